// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package stats

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/netip"

	"github.com/hrissan/dtlscerts/certinfo"
	"github.com/hrissan/dtlscerts/format"
)

// Stats receives every diagnostic event of parsing, nothing else logs.
// flow identifies the session, as "src -> dst".
type Stats interface {
	// transport layer
	SocketReadError(n int, addr netip.AddrPort, err error)
	SocketReadDatagram(datagram []byte, addr netip.AddrPort)

	// record layer
	// kind: dtls, tls
	BadRecord(kind string, recordOffset int, datagramLen int, flow string, err error)

	// message layer
	BadMessageHeader(kind string, messageOffset int, recordLen int, flow string, err error)
	FragmentSkipped(header format.MessageHandshakeHeader, flow string)

	// certificate layer
	// index is position in the certificate list, err is a *certinfo.DecodeError
	BadCertificate(index int, der []byte, flow string, err error)
	CertificateDecoded(index int, ci *certinfo.CertificateInfo, flow string)
	DuplicateCertificate(index int, ci *certinfo.CertificateInfo, flow string)
	SelfSigned(ci *certinfo.CertificateInfo, flow string)
}

// StatsLog writes events to a slog.Logger. Failures are Warn, decoded
// certificates are Info, datagram dumps and duplicates are Debug.
type StatsLog struct {
	logger *slog.Logger
}

func NewStatsLog(logger *slog.Logger) *StatsLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsLog{logger: logger.With(slog.String("component", "dtlscerts"))}
}

func (s *StatsLog) SocketReadError(n int, addr netip.AddrPort, err error) {
	s.logger.Warn("socket read error", "n", n, "addr", addr, "error", err)
}

func (s *StatsLog) SocketReadDatagram(datagram []byte, addr netip.AddrPort) {
	if !s.logger.Enabled(context.Background(), slog.LevelDebug) {
		return // do not format hex for nothing
	}
	s.logger.Debug("socket read", "n", len(datagram), "addr", addr, "datagram", hex.EncodeToString(datagram))
}

func (s *StatsLog) BadRecord(kind string, recordOffset int, datagramLen int, flow string, err error) {
	s.logger.Warn("bad record", "kind", kind, "offset", recordOffset, "datagramLen", datagramLen, "flow", flow, "error", err)
}

func (s *StatsLog) BadMessageHeader(kind string, messageOffset int, recordLen int, flow string, err error) {
	s.logger.Warn("bad message header", "kind", kind, "offset", messageOffset, "recordLen", recordLen, "flow", flow, "error", err)
}

func (s *StatsLog) FragmentSkipped(header format.MessageHandshakeHeader, flow string) {
	s.logger.Debug("fragmented handshake message skipped",
		"type", format.HandshakeTypeToName(header.HandshakeType),
		"length", header.Length, "fragmentOffset", header.FragmentOffset, "flow", flow)
}

func (s *StatsLog) BadCertificate(index int, der []byte, flow string, err error) {
	s.logger.Warn("bad certificate", "index", index, "len", len(der), "reason", certinfo.ReasonOf(err), "flow", flow, "error", err)
}

func (s *StatsLog) CertificateDecoded(index int, ci *certinfo.CertificateInfo, flow string) {
	s.logger.Info("certificate", "index", index,
		"subjectCN", certinfo.Values(ci.Subject.CommonName),
		"issuerCN", certinfo.Values(ci.Issuer.CommonName),
		"alt", ci.AltNames, "flow", flow)
}

func (s *StatsLog) DuplicateCertificate(index int, ci *certinfo.CertificateInfo, flow string) {
	s.logger.Debug("duplicate certificate dropped", "index", index, "subjectCN", certinfo.Values(ci.Subject.CommonName), "flow", flow)
}

func (s *StatsLog) SelfSigned(ci *certinfo.CertificateInfo, flow string) {
	s.logger.Info("self-signed certificate", "subjectCN", certinfo.Values(ci.Subject.CommonName), "flow", flow)
}
