// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package stats

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrissan/dtlscerts/certinfo"
	"github.com/hrissan/dtlscerts/format"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestStatsLogLevels(t *testing.T) {
	var buf bytes.Buffer
	s := NewStatsLog(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	ci := &certinfo.CertificateInfo{Subject: certinfo.NameAttributes{CommonName: []certinfo.NameString{{Value: "example.com"}}}}
	s.SocketReadDatagram([]byte{0x16, 0xfe, 0xfd}, netip.MustParseAddrPort("127.0.0.1:5684"))
	s.FragmentSkipped(format.MessageHandshakeHeader{HandshakeType: format.HandshakeTypeCertificate, FragmentOffset: 10}, "a -> b")
	s.DuplicateCertificate(1, ci, "a -> b")
	require.Empty(t, buf.String())

	s.BadCertificate(2, []byte{0x30}, "a -> b", certinfo.ErrSubjectMissing)
	s.CertificateDecoded(0, ci, "a -> b")

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	require.Equal(t, "WARN", lines[0]["level"])
	require.Equal(t, "bad certificate", lines[0]["msg"])
	require.Equal(t, float64(8), lines[0]["reason"])
	require.Equal(t, "dtlscerts", lines[0]["component"])
	require.Equal(t, "INFO", lines[1]["level"])
	require.Equal(t, []any{"example.com"}, lines[1]["subjectCN"])
}

func TestStatsLogDebugDatagram(t *testing.T) {
	var buf bytes.Buffer
	s := NewStatsLog(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	s.SocketReadDatagram([]byte{0x16, 0xfe, 0xfd}, netip.MustParseAddrPort("127.0.0.1:5684"))
	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "16fefd", lines[0]["datagram"])
}

func TestCountersAndMulti(t *testing.T) {
	var a, b Counters
	m := Multi{&a, &b}
	ci := &certinfo.CertificateInfo{}

	m.SocketReadDatagram(nil, netip.AddrPort{})
	m.SocketReadError(0, netip.AddrPort{}, errors.New("closed"))
	m.BadRecord("dtls", 0, 10, "", format.ErrPlaintextRecordBodyTooShort)
	m.BadMessageHeader("dtls", 13, 20, "", format.ErrMessageHandshakeTooShort)
	m.FragmentSkipped(format.MessageHandshakeHeader{}, "")
	m.BadCertificate(0, nil, "", certinfo.ErrValidityMissing)
	m.BadCertificate(1, nil, "", certinfo.ErrValidityMissing)
	m.BadCertificate(2, nil, "", errors.New("other"))
	m.CertificateDecoded(0, ci, "")
	m.DuplicateCertificate(0, ci, "")
	m.SelfSigned(ci, "")

	for _, c := range []*Counters{&a, &b} {
		require.Equal(t, Summary{
			Datagrams:             1,
			SocketReadErrors:      1,
			BadRecords:            1,
			BadMessageHeaders:     1,
			FragmentsSkipped:      1,
			BadCertificates:       3,
			CertificatesDecoded:   1,
			DuplicateCertificates: 1,
			SelfSignedTags:        1,
		}, c.Summary())
		require.Equal(t, uint64(2), c.BadCertificateReason(7))
		require.Equal(t, uint64(1), c.BadCertificateReason(0))
		require.Equal(t, uint64(0), c.BadCertificateReason(11))
	}
}
