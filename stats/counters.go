// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package stats

import (
	"net/netip"
	"sync/atomic"

	"github.com/hrissan/dtlscerts/certinfo"
	"github.com/hrissan/dtlscerts/format"
)

// maxReason is the largest certinfo.DecodeError reason
const maxReason = 10

// Counters counts events, safe for concurrent use by several engines.
type Counters struct {
	SocketReadErrors      atomic.Uint64
	Datagrams             atomic.Uint64
	BadRecords            atomic.Uint64
	BadMessageHeaders     atomic.Uint64
	FragmentsSkipped      atomic.Uint64
	BadCertificates       atomic.Uint64
	CertificatesDecoded   atomic.Uint64
	DuplicateCertificates atomic.Uint64
	SelfSignedTags        atomic.Uint64

	// by certinfo.ReasonOf, index 0 counts errors without a reason
	badCertificateReasons [maxReason + 1]atomic.Uint64
}

func (c *Counters) SocketReadError(int, netip.AddrPort, error) { c.SocketReadErrors.Add(1) }

func (c *Counters) SocketReadDatagram([]byte, netip.AddrPort) { c.Datagrams.Add(1) }

func (c *Counters) BadRecord(string, int, int, string, error) { c.BadRecords.Add(1) }

func (c *Counters) BadMessageHeader(string, int, int, string, error) { c.BadMessageHeaders.Add(1) }

func (c *Counters) FragmentSkipped(format.MessageHandshakeHeader, string) { c.FragmentsSkipped.Add(1) }

func (c *Counters) BadCertificate(_ int, _ []byte, _ string, err error) {
	c.BadCertificates.Add(1)
	reason := certinfo.ReasonOf(err)
	if reason < 0 || reason > maxReason {
		reason = 0
	}
	c.badCertificateReasons[reason].Add(1)
}

func (c *Counters) CertificateDecoded(int, *certinfo.CertificateInfo, string) {
	c.CertificatesDecoded.Add(1)
}

func (c *Counters) DuplicateCertificate(int, *certinfo.CertificateInfo, string) {
	c.DuplicateCertificates.Add(1)
}

func (c *Counters) SelfSigned(*certinfo.CertificateInfo, string) { c.SelfSignedTags.Add(1) }

// BadCertificateReason returns how many certificates failed at step reason.
func (c *Counters) BadCertificateReason(reason int) uint64 {
	if reason < 0 || reason > maxReason {
		return 0
	}
	return c.badCertificateReasons[reason].Load()
}

// Summary is a snapshot for printing.
type Summary struct {
	Datagrams             uint64 `json:"datagrams" yaml:"datagrams"`
	SocketReadErrors      uint64 `json:"socketReadErrors" yaml:"socketReadErrors"`
	BadRecords            uint64 `json:"badRecords" yaml:"badRecords"`
	BadMessageHeaders     uint64 `json:"badMessageHeaders" yaml:"badMessageHeaders"`
	FragmentsSkipped      uint64 `json:"fragmentsSkipped" yaml:"fragmentsSkipped"`
	BadCertificates       uint64 `json:"badCertificates" yaml:"badCertificates"`
	CertificatesDecoded   uint64 `json:"certificatesDecoded" yaml:"certificatesDecoded"`
	DuplicateCertificates uint64 `json:"duplicateCertificates" yaml:"duplicateCertificates"`
	SelfSignedTags        uint64 `json:"selfSignedTags" yaml:"selfSignedTags"`
}

func (c *Counters) Summary() Summary {
	return Summary{
		Datagrams:             c.Datagrams.Load(),
		SocketReadErrors:      c.SocketReadErrors.Load(),
		BadRecords:            c.BadRecords.Load(),
		BadMessageHeaders:     c.BadMessageHeaders.Load(),
		FragmentsSkipped:      c.FragmentsSkipped.Load(),
		BadCertificates:       c.BadCertificates.Load(),
		CertificatesDecoded:   c.CertificatesDecoded.Load(),
		DuplicateCertificates: c.DuplicateCertificates.Load(),
		SelfSignedTags:        c.SelfSignedTags.Load(),
	}
}
