// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/netip"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hrissan/dtlscerts/capture"
	"github.com/hrissan/dtlscerts/constants"
	"github.com/hrissan/dtlscerts/dtlsparser"
	"github.com/hrissan/dtlscerts/output"
	"github.com/hrissan/dtlscerts/session"
)

func (a *app) doPcap(cmd *cobra.Command, args []string) error {
	results, err := capture.ProcessFiles(cmd.Context(), args, a.opts)
	if err != nil {
		return err
	}
	var docs []output.SessionDocument
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			slog.Warn("capture file failed", "path", result.Path, "error", result.Err)
			failed++
		}
		docs = append(docs, output.NewSessionDocuments(result.Sessions, a.opts.ReferenceTime)...)
	}
	a.logSummary()
	if err := a.writeSessions(docs); err != nil {
		return err
	}
	if failed == len(results) {
		return fmt.Errorf("none of %d capture files could be read", len(results))
	}
	return nil
}

func (a *app) doListen(cmd *cobra.Command, _ []string) error {
	socket, err := capture.OpenUDP(a.opts.Listen)
	if err != nil {
		return err
	}
	slog.Info("listening", "addr", socket.LocalAddr().String())
	e := capture.NewEngine(a.opts)
	if err := e.ListenUDP(cmd.Context(), socket); err != nil {
		return err
	}
	a.logSummary()
	return a.writeSessions(output.NewSessionDocuments(e.Sessions(), a.opts.ReferenceTime))
}

func (a *app) doHex(cmd *cobra.Command, args []string) error {
	lines := args
	if len(lines) == 0 {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64*1024), 4*constants.MaxDatagramLength)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}
	// all datagrams belong to one session, as if captured from one flow
	sess := session.New("hex", time.Now())
	sess.AddProtocol(constants.ProtocolDTLS)
	parser := dtlsparser.NewParser(a.opts)
	for i, line := range lines {
		datagram, err := hex.DecodeString(strings.Join(strings.Fields(line), ""))
		if err != nil {
			return fmt.Errorf("datagram %d is not hex: %w", i, err)
		}
		a.opts.Stats.SocketReadDatagram(datagram, netip.AddrPort{})
		if !parser.ParseDatagram(sess, datagram) {
			slog.Warn("not a DTLS handshake datagram", "index", i)
		}
	}
	a.logSummary()
	return a.writeSessions([]output.SessionDocument{output.NewSessionDocument(sess, a.opts.ReferenceTime)})
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version of dtlscerts",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			info, ok := debug.ReadBuildInfo()
			if !ok {
				fmt.Fprintln(out, "dtlscerts: version info not available")
				return
			}
			fmt.Fprintf(out, "dtlscerts: %s\n", info.Main.Version)
			fmt.Fprintf(out, "go:        %s\n", info.GoVersion)
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					fmt.Fprintf(out, "commit:    %s\n", s.Value)
				case "vcs.time":
					fmt.Fprintf(out, "date:      %s\n", s.Value)
				case "vcs.modified":
					fmt.Fprintf(out, "dirty:     %s\n", s.Value)
				}
			}
		},
	}
}
