// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hrissan/dtlscerts/options"
	"github.com/hrissan/dtlscerts/output"
	"github.com/hrissan/dtlscerts/stats"
)

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	flagConfigFilePath string
	flagVerbose        bool
	flagFormat         string
	flagHalt           bool
	flagWorkers        int
	flagListen         string
	flagReferenceTime  string

	opts     *options.Options
	counters *stats.Counters
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.rootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("dtlscerts failed", "err", err)
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dtlscerts",
		Short:         "Extracts certificate identities from captured DTLS and TLS handshakes",
		SilenceUsage:  true,
		SilenceErrors: true,
		// parse config, setup logging
		PersistentPreRunE: a.init,
	}
	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	rootCmd.PersistentFlags().StringVar(&a.flagConfigFilePath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&a.flagVerbose, "verbose", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&a.flagFormat, "format", options.OutputJSON, fmt.Sprintf("output format, one of %v", options.OutputFormats))
	rootCmd.PersistentFlags().StringVar(&a.flagReferenceTime, "reference-time", "", "RFC 3339 time remaining validity is computed against, default is the last packet of each session")
	rootCmd.PersistentFlags().BoolVar(&a.flagHalt, "halt-on-bad-certificate", true, "skip the rest of a certificate list after a certificate fails to decode")

	pcapCmd := &cobra.Command{
		Use:   "pcap FILE...",
		Short: "decode certificates from pcap or pcapng files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.doPcap,
	}
	pcapCmd.Flags().IntVar(&a.flagWorkers, "workers", 4, "files processed in parallel")

	listenCmd := &cobra.Command{
		Use:   "listen",
		Short: "decode certificates from DTLS datagrams sent to a local UDP address, until interrupted",
		Args:  cobra.NoArgs,
		RunE:  a.doListen,
	}
	listenCmd.Flags().StringVar(&a.flagListen, "listen", "127.0.0.1:5684", "local UDP address")

	hexCmd := &cobra.Command{
		Use:   "hex [DATAGRAM...]",
		Short: "decode certificates from hex encoded DTLS datagrams, one per argument or per line of stdin",
		RunE:  a.doHex,
	}

	rootCmd.AddCommand(pcapCmd, listenCmd, hexCmd, versionCommand())
	return rootCmd
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	// initialize logging
	level := slog.LevelInfo
	if a.flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(a.stderr, &slog.HandlerOptions{Level: level})))

	a.counters = &stats.Counters{}
	a.opts = options.Default(stats.Multi{stats.NewStatsLog(slog.Default()), a.counters})
	if a.flagConfigFilePath != "" {
		if err := a.opts.LoadFile(a.flagConfigFilePath); err != nil {
			return err
		}
	}
	// flags have a precedence over config file
	flags := cmd.Flags()
	if flags.Changed("format") {
		a.opts.OutputFormat = a.flagFormat
	}
	if flags.Changed("halt-on-bad-certificate") {
		a.opts.HaltOnBadCertificate = a.flagHalt
	}
	if flags.Changed("workers") {
		a.opts.Workers = a.flagWorkers
	}
	if flags.Changed("listen") {
		a.opts.Listen = a.flagListen
	}
	if flags.Changed("reference-time") {
		t, err := time.Parse(time.RFC3339, a.flagReferenceTime)
		if err != nil {
			return fmt.Errorf("invalid --reference-time: %w", err)
		}
		a.opts.ReferenceTime = t
	}
	if err := a.opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	slog.Debug("dtlscerts run", "configPath", a.flagConfigFilePath, "format", a.opts.OutputFormat, "workers", a.opts.Workers, "listen", a.opts.Listen)
	return nil
}

func (a *app) writeSessions(docs []output.SessionDocument) error {
	w, err := output.NewWriter(a.opts.OutputFormat, a.stdout)
	if err != nil {
		return err
	}
	if err := w.WriteSessions(docs); err != nil {
		return err
	}
	return w.Close()
}

func (a *app) logSummary() {
	summary := a.counters.Summary()
	slog.Info("summary",
		"datagrams", summary.Datagrams,
		"certificates", summary.CertificatesDecoded,
		"duplicates", summary.DuplicateCertificates,
		"badCertificates", summary.BadCertificates,
		"fragmentsSkipped", summary.FragmentsSkipped,
		"selfSigned", summary.SelfSignedTags)
}
