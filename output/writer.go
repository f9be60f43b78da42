// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/hrissan/dtlscerts/options"
)

type Writer interface {
	WriteSessions(docs []SessionDocument) error
	// Close flushes buffered output, the underlying io.Writer is not closed
	Close() error
}

// NewWriter returns a writer for one of options.OutputFormats.
func NewWriter(format string, w io.Writer) (Writer, error) {
	switch format {
	case options.OutputJSON:
		return &jsonWriter{enc: json.NewEncoder(w)}, nil
	case options.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &yamlWriter{enc: enc}, nil
	case options.OutputCBOR:
		em, err := cbor.CanonicalEncOptions().EncMode()
		if err != nil {
			return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
		}
		return &cborWriter{enc: em.NewEncoder(w)}, nil
	case options.OutputTable:
		return &tableWriter{w: w}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// one object per line
type jsonWriter struct {
	enc *json.Encoder
}

func (jw *jsonWriter) WriteSessions(docs []SessionDocument) error {
	for _, doc := range docs {
		if err := jw.enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
	}
	return nil
}

func (jw *jsonWriter) Close() error { return nil }

// one YAML document per session
type yamlWriter struct {
	enc *yaml.Encoder
}

func (yw *yamlWriter) WriteSessions(docs []SessionDocument) error {
	for _, doc := range docs {
		if err := yw.enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to write YAML: %w", err)
		}
	}
	return nil
}

func (yw *yamlWriter) Close() error { return yw.enc.Close() }

// CBOR sequence [rfc8742], one data item per session
type cborWriter struct {
	enc *cbor.Encoder
}

func (cw *cborWriter) WriteSessions(docs []SessionDocument) error {
	for _, doc := range docs {
		if err := cw.enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to write CBOR: %w", err)
		}
	}
	return nil
}

func (cw *cborWriter) Close() error { return nil }

var tableHeader = []string{"Flow", "#", "Subject CN", "Issuer CN", "Alt Names", "Serial", "Not After", "Days Left", "Tags"}

// one row per certificate, sessions without certificates are skipped
type tableWriter struct {
	w io.Writer
}

func (tw *tableWriter) WriteSessions(docs []SessionDocument) error {
	var rows [][]string
	for _, doc := range docs {
		for i, cert := range doc.Cert {
			rows = append(rows, []string{
				doc.Flow,
				strconv.Itoa(i),
				strings.Join(cert.SubjectCN, ", "),
				strings.Join(cert.IssuerCN, ", "),
				strings.Join(cert.Alt, ", "),
				cert.Serial,
				time.UnixMilli(cert.NotAfter).UTC().Format("2006-01-02"),
				strconv.FormatInt(cert.RemainingDays, 10),
				strings.Join(doc.Tags, ", "),
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	table := tablewriter.NewTable(tw.w)
	table.Header(tableHeader)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func (tw *tableWriter) Close() error { return nil }
