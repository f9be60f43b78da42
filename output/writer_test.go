// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hrissan/dtlscerts/certinfo"
	"github.com/hrissan/dtlscerts/constants"
	"github.com/hrissan/dtlscerts/dtlstest"
	"github.com/hrissan/dtlscerts/options"
	"github.com/hrissan/dtlscerts/session"
)

var lastPacket = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func testSessions(t *testing.T) []*session.Session {
	t.Helper()
	ci, err := certinfo.Decode(dtlstest.MustCertificate(dtlstest.ExampleCom()), certinfo.DefaultDecodeOptions())
	require.NoError(t, err)

	withCert := session.New("192.0.2.10:40000 -> 192.0.2.1:5684", lastPacket.Add(-time.Minute))
	withCert.Touch(lastPacket)
	withCert.AddProtocol(constants.ProtocolDTLS)
	withCert.AddTag(constants.SelfSignedTag)
	require.True(t, withCert.Certificates.Add(ci))

	empty := session.New("192.0.2.11:40000 -> 192.0.2.1:5684", lastPacket)
	empty.AddProtocol(constants.ProtocolDTLS)
	return []*session.Session{withCert, empty}
}

func TestNewSessionDocument(t *testing.T) {
	sessions := testSessions(t)
	doc := NewSessionDocument(sessions[0], time.Time{})
	require.Equal(t, sessions[0].ID.String(), doc.ID)
	require.Equal(t, lastPacket.UnixMilli(), doc.LastPacket)
	require.Equal(t, lastPacket.Add(-time.Minute).UnixMilli(), doc.FirstPacket)
	require.Equal(t, 1, doc.CertCnt)
	require.Len(t, doc.Cert, 1)
	cert := doc.Cert[0]
	require.Equal(t, "1234", cert.Serial)
	require.Equal(t, []string{"example.com"}, cert.SubjectCN)
	// the certificate expires at 2026-01-01, one year after the last packet
	require.Equal(t, int64(365), cert.RemainingDays)

	later := NewSessionDocument(sessions[0], time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Zero(t, later.Cert[0].RemainingDays)
}

func writeAll(t *testing.T, format string, docs []SessionDocument) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(format, &buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteSessions(docs))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestJSONLines(t *testing.T) {
	docs := NewSessionDocuments(testSessions(t), time.Time{})
	data := writeAll(t, options.OutputJSON, docs)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	var lines []map[string]any
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 2)
	require.Equal(t, float64(1), lines[0]["certCnt"])
	require.Equal(t, []any{constants.SelfSignedTag}, lines[0]["tags"])
	cert := lines[0]["cert"].([]any)[0].(map[string]any)
	require.Equal(t, []any{"www.example.com"}, cert["alt"])
	require.Equal(t, "id-ecPublicKey", cert["publicAlgorithm"])
	require.Equal(t, float64(0), lines[1]["certCnt"])
	require.NotContains(t, lines[1], "cert")
}

func TestYAMLDocuments(t *testing.T) {
	docs := NewSessionDocuments(testSessions(t), time.Time{})
	data := writeAll(t, options.OutputYAML, docs)
	require.Contains(t, string(data), "subjectCN:")

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var decoded []SessionDocument
	for {
		var doc SessionDocument
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		decoded = append(decoded, doc)
	}
	require.Equal(t, docs, decoded)
}

func TestCBORSequence(t *testing.T) {
	docs := NewSessionDocuments(testSessions(t), time.Time{})
	data := writeAll(t, options.OutputCBOR, docs)

	dec := cbor.NewDecoder(bytes.NewReader(data))
	var decoded []SessionDocument
	for {
		var doc SessionDocument
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		decoded = append(decoded, doc)
	}
	require.Equal(t, docs, decoded)

	// field names are shared with JSON
	var generic map[string]any
	require.NoError(t, cbor.NewDecoder(bytes.NewReader(data)).Decode(&generic))
	require.Contains(t, generic, "certCnt")
	require.Contains(t, generic, "firstPacket")
}

func TestTable(t *testing.T) {
	docs := NewSessionDocuments(testSessions(t), time.Time{})
	text := string(writeAll(t, options.OutputTable, docs))
	for _, s := range []string{"192.0.2.10:40000 -> 192.0.2.1:5684", "www.example.com", "1234", "2026-01-01", "365", constants.SelfSignedTag} {
		require.Contains(t, text, s)
	}
	require.NotContains(t, text, "192.0.2.11")

	require.Empty(t, writeAll(t, options.OutputTable, docs[1:]))
}

func TestUnknownFormat(t *testing.T) {
	_, err := NewWriter("xml", io.Discard)
	require.ErrorContains(t, err, "xml")
	for _, format := range options.OutputFormats {
		_, err := NewWriter(format, io.Discard)
		require.NoError(t, err, format)
	}
}
