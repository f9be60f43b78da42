// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package options

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hrissan/dtlscerts/certinfo"
	"github.com/hrissan/dtlscerts/stats"
)

const (
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputCBOR  = "cbor"
	OutputTable = "table"
)

var OutputFormats = []string{OutputJSON, OutputYAML, OutputCBOR, OutputTable}

type Options struct {
	Stats stats.Stats

	Decoder certinfo.DecodeOptions
	// Stop the rest of a certificate list on the first certificate which fails to decode
	HaltOnBadCertificate bool

	Workers        int    // pcap files processed in parallel
	Listen         string // UDP address for live capture
	ReadErrorDelay time.Duration
	// Flows without packets for longer are forgotten, a later packet starts
	// a new session. 0 keeps flows for the life of the engine.
	FlowIdleTimeout time.Duration
	// Remaining validity is computed against this time,
	// zero means the time of the last packet of each session
	ReferenceTime time.Time

	OutputFormat string
}

func Default(st stats.Stats) *Options {
	return &Options{
		Stats:                st,
		Decoder:              certinfo.DefaultDecodeOptions(),
		HaltOnBadCertificate: true,
		Workers:              4,
		Listen:               "127.0.0.1:5684",
		ReadErrorDelay:       50 * time.Millisecond,
		FlowIdleTimeout:      60 * time.Second,
		OutputFormat:         OutputJSON,
	}
}

func (opts *Options) Validate() error {
	if opts.Stats == nil {
		return fmt.Errorf("stats must be set")
	}
	if opts.Decoder.MaxDepth < 1 || opts.Decoder.MaxDepth > 1024 {
		return fmt.Errorf("decoder.max_depth (%d) should be in 1..1024", opts.Decoder.MaxDepth)
	}
	if opts.Workers < 1 {
		return fmt.Errorf("capture.workers (%d) should be > 0", opts.Workers)
	}
	if opts.ReadErrorDelay < 0 {
		return fmt.Errorf("capture.read_error_delay (%v) should not be negative", opts.ReadErrorDelay)
	}
	if opts.FlowIdleTimeout < 0 {
		return fmt.Errorf("capture.flow_idle_timeout (%v) should not be negative", opts.FlowIdleTimeout)
	}
	if !slices.Contains(OutputFormats, opts.OutputFormat) {
		return fmt.Errorf("unsupported output.format %q, expected one of %v", opts.OutputFormat, OutputFormats)
	}
	return nil
}

type fileOptions struct {
	Decoder struct {
		MaxDepth             int  `yaml:"max_depth"`
		HaltOnBadCertificate bool `yaml:"halt_on_bad_certificate"`
		FirstAltNamesOnly    bool `yaml:"first_alt_names_only"`
		PopulatePublicKey    bool `yaml:"populate_public_key"`
	} `yaml:"decoder"`
	Capture struct {
		Workers         int           `yaml:"workers"`
		Listen          string        `yaml:"listen"`
		ReadErrorDelay  time.Duration `yaml:"read_error_delay"`
		FlowIdleTimeout time.Duration `yaml:"flow_idle_timeout"`
		ReferenceTime   time.Time     `yaml:"reference_time"`
	} `yaml:"capture"`
	Output struct {
		Format string `yaml:"format"`
	} `yaml:"output"`
}

// LoadFile overrides opts with values present in a YAML file, keys absent
// from the file keep their current values.
func (opts *Options) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := opts.Load(data); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (opts *Options) Load(data []byte) error {
	var fo fileOptions
	fo.Decoder.MaxDepth = opts.Decoder.MaxDepth
	fo.Decoder.HaltOnBadCertificate = opts.HaltOnBadCertificate
	fo.Decoder.FirstAltNamesOnly = opts.Decoder.FirstAltNamesOnly
	fo.Decoder.PopulatePublicKey = opts.Decoder.PopulatePublicKey
	fo.Capture.Workers = opts.Workers
	fo.Capture.Listen = opts.Listen
	fo.Capture.ReadErrorDelay = opts.ReadErrorDelay
	fo.Capture.FlowIdleTimeout = opts.FlowIdleTimeout
	fo.Capture.ReferenceTime = opts.ReferenceTime
	fo.Output.Format = opts.OutputFormat

	if err := yaml.Unmarshal(data, &fo); err != nil {
		return err
	}

	opts.Decoder.MaxDepth = fo.Decoder.MaxDepth
	opts.HaltOnBadCertificate = fo.Decoder.HaltOnBadCertificate
	opts.Decoder.FirstAltNamesOnly = fo.Decoder.FirstAltNamesOnly
	opts.Decoder.PopulatePublicKey = fo.Decoder.PopulatePublicKey
	opts.Workers = fo.Capture.Workers
	opts.Listen = fo.Capture.Listen
	opts.ReadErrorDelay = fo.Capture.ReadErrorDelay
	opts.FlowIdleTimeout = fo.Capture.FlowIdleTimeout
	opts.ReferenceTime = fo.Capture.ReferenceTime
	opts.OutputFormat = fo.Output.Format
	return nil
}
