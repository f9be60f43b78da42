// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrissan/dtlscerts/dtlstest"
	"github.com/hrissan/dtlscerts/output"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := &app{stdin: strings.NewReader(stdin), stdout: &stdout, stderr: &stderr}
	cmd := a.rootCommand()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func readDocuments(t *testing.T, out string) []output.SessionDocument {
	t.Helper()
	var docs []output.SessionDocument
	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(nil, 1<<20)
	for scanner.Scan() {
		var doc output.SessionDocument
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &doc))
		docs = append(docs, doc)
	}
	require.NoError(t, scanner.Err())
	return docs
}

func certificateDatagram() []byte {
	der := dtlstest.MustCertificate(dtlstest.ExampleCom())
	return dtlstest.Datagram(dtlstest.Record(1, dtlstest.CertificateMessage(der)))
}

func TestHexArgument(t *testing.T) {
	stdout, _, err := run(t, "", "hex", hex.EncodeToString(certificateDatagram()))
	require.NoError(t, err)
	docs := readDocuments(t, stdout)
	require.Len(t, docs, 1)
	require.Equal(t, "hex", docs[0].Flow)
	require.Equal(t, 1, docs[0].CertCnt)
	require.Equal(t, []string{"example.com"}, docs[0].Cert[0].SubjectCN)
	require.Equal(t, []string{"www.example.com"}, docs[0].Cert[0].Alt)
}

func TestHexStdin(t *testing.T) {
	other := dtlstest.ExampleCom()
	other.Subject = dtlstest.Name{dtlstest.CN("other.example")}
	der := dtlstest.MustCertificate(other)
	second := dtlstest.Datagram(dtlstest.Record(2, dtlstest.CertificateMessage(der)))

	// the same certificate twice is stored once
	stdin := hex.EncodeToString(certificateDatagram()) + "\n\n" +
		hex.EncodeToString(certificateDatagram()) + "\n" +
		hex.EncodeToString(second) + "\n"
	stdout, _, err := run(t, stdin, "hex")
	require.NoError(t, err)
	docs := readDocuments(t, stdout)
	require.Len(t, docs, 1)
	require.Equal(t, 2, docs[0].CertCnt)
	require.Equal(t, []string{"other.example"}, docs[0].Cert[1].SubjectCN)
}

func TestHexNotHex(t *testing.T) {
	_, _, err := run(t, "", "hex", "16fefdzz")
	require.ErrorContains(t, err, "not hex")
}

func TestHexVerboseLogsDatagram(t *testing.T) {
	_, stderr, err := run(t, "", "--verbose", "hex", hex.EncodeToString(certificateDatagram()))
	require.NoError(t, err)
	require.Contains(t, stderr, `"level":"DEBUG"`)
	require.Contains(t, stderr, `"msg":"summary"`)
}

func TestUnknownFormat(t *testing.T) {
	_, _, err := run(t, "", "--format", "xml", "hex", "00")
	require.ErrorContains(t, err, "invalid options")
}

func TestTableFormat(t *testing.T) {
	stdout, _, err := run(t, "", "--format", "table", "hex", hex.EncodeToString(certificateDatagram()))
	require.NoError(t, err)
	require.Contains(t, stdout, "www.example.com")
}

func writeCapture(t *testing.T, dir string, name string) string {
	t.Helper()
	client := netip.MustParseAddrPort("192.0.2.10:40000")
	server := netip.MustParseAddrPort("192.0.2.1:5684")
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	der := dtlstest.MustCertificate(dtlstest.ExampleCom())

	var buf bytes.Buffer
	require.NoError(t, dtlstest.WritePcap(&buf, dtlstest.DTLSFlow(client, server, start, der)...))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestPcap(t *testing.T) {
	dir := t.TempDir()
	first := writeCapture(t, dir, "first.pcap")
	second := writeCapture(t, dir, "second.pcap")

	stdout, stderr, err := run(t, "", "pcap", "--workers", "1", first, filepath.Join(dir, "missing.pcap"), second)
	require.NoError(t, err)
	require.Contains(t, stderr, "capture file failed")
	docs := readDocuments(t, stdout)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		require.Equal(t, "192.0.2.10:40000 -> 192.0.2.1:5684", doc.Flow)
		require.Equal(t, 1, doc.CertCnt)
		// remaining validity is counted from the last packet of the session
		require.Equal(t, int64(305), doc.Cert[0].RemainingDays)
	}
}

func TestReferenceTime(t *testing.T) {
	datagram := hex.EncodeToString(certificateDatagram())
	stdout, _, err := run(t, "", "--reference-time", "2025-12-31T00:00:00Z", "hex", datagram)
	require.NoError(t, err)
	docs := readDocuments(t, stdout)
	require.Len(t, docs, 1)
	require.Equal(t, int64(1), docs[0].Cert[0].RemainingDays)

	_, _, err = run(t, "", "--reference-time", "yesterday", "hex", datagram)
	require.ErrorContains(t, err, "reference-time")
}

func TestPcapAllFilesFail(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, "", "pcap", filepath.Join(dir, "a.pcap"), filepath.Join(dir, "b.pcap"))
	require.ErrorContains(t, err, "none of 2 capture files")
}

func TestConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte("output:\n  format: yaml\n"), 0o644))
	datagram := hex.EncodeToString(certificateDatagram())

	stdout, _, err := run(t, "", "--config", config, "hex", datagram)
	require.NoError(t, err)
	require.Contains(t, stdout, "subjectCN:")

	stdout, _, err = run(t, "", "--config", config, "--format", "json", "hex", datagram)
	require.NoError(t, err)
	require.Len(t, readDocuments(t, stdout), 1)

	_, _, err = run(t, "", "--config", filepath.Join(dir, "missing.yaml"), "hex", datagram)
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stdout, "dtlscerts"))
}
