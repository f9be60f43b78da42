// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package stats

import (
	"net/netip"

	"github.com/hrissan/dtlscerts/certinfo"
	"github.com/hrissan/dtlscerts/format"
)

// Multi passes every event to all of its elements in order.
type Multi []Stats

func (m Multi) SocketReadError(n int, addr netip.AddrPort, err error) {
	for _, s := range m {
		s.SocketReadError(n, addr, err)
	}
}

func (m Multi) SocketReadDatagram(datagram []byte, addr netip.AddrPort) {
	for _, s := range m {
		s.SocketReadDatagram(datagram, addr)
	}
}

func (m Multi) BadRecord(kind string, recordOffset int, datagramLen int, flow string, err error) {
	for _, s := range m {
		s.BadRecord(kind, recordOffset, datagramLen, flow, err)
	}
}

func (m Multi) BadMessageHeader(kind string, messageOffset int, recordLen int, flow string, err error) {
	for _, s := range m {
		s.BadMessageHeader(kind, messageOffset, recordLen, flow, err)
	}
}

func (m Multi) FragmentSkipped(header format.MessageHandshakeHeader, flow string) {
	for _, s := range m {
		s.FragmentSkipped(header, flow)
	}
}

func (m Multi) BadCertificate(index int, der []byte, flow string, err error) {
	for _, s := range m {
		s.BadCertificate(index, der, flow, err)
	}
}

func (m Multi) CertificateDecoded(index int, ci *certinfo.CertificateInfo, flow string) {
	for _, s := range m {
		s.CertificateDecoded(index, ci, flow)
	}
}

func (m Multi) DuplicateCertificate(index int, ci *certinfo.CertificateInfo, flow string) {
	for _, s := range m {
		s.DuplicateCertificate(index, ci, flow)
	}
}

func (m Multi) SelfSigned(ci *certinfo.CertificateInfo, flow string) {
	for _, s := range m {
		s.SelfSigned(ci, flow)
	}
}
