// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package dtlstest

import (
	"github.com/hrissan/dtlscerts/format"
)

const VersionDTLS12 = 0xFEFD
const VersionTLS12 = 0x0303

// Message is one handshake message. Length 0 means len(Body).
type Message struct {
	Type           byte
	Body           []byte
	Length         uint32
	FragmentOffset uint32
}

func CertificateMessage(certs ...[]byte) Message {
	return Message{Type: format.HandshakeTypeCertificate, Body: format.AppendCertificateList(nil, certs...)}
}

func (m Message) length() uint32 {
	if m.Length != 0 {
		return m.Length
	}
	return uint32(len(m.Body))
}

// Record returns one DTLS handshake record carrying messages.
func Record(seq uint64, messages ...Message) []byte {
	var body []byte
	for i, m := range messages {
		hdr := format.MessageHandshakeHeader{
			HandshakeType:  m.Type,
			Length:         m.length(),
			MessageSeq:     uint16(i),
			FragmentOffset: m.FragmentOffset,
			FragmentLength: uint32(len(m.Body)),
		}
		body = hdr.Write(body)
		body = append(body, m.Body...)
	}
	hdr := format.PlaintextRecordHeader{
		ContentType:    format.PlaintextContentTypeHandshake,
		Version:        VersionDTLS12,
		SequenceNumber: seq,
	}
	record := hdr.Write(nil, len(body))
	return append(record, body...)
}

// Datagram concatenates records.
func Datagram(records ...[]byte) []byte {
	var datagram []byte
	for _, r := range records {
		datagram = append(datagram, r...)
	}
	return datagram
}

// ClientHelloDatagram looks like the first datagram of a DTLS flow to the classifier.
func ClientHelloDatagram() []byte {
	body := make([]byte, 120)
	body[0], body[1] = 0xFE, 0xFD
	return Datagram(Record(0, Message{Type: format.HandshakeTypeClientHello, Body: body}))
}

// TLSRecord returns one TLS handshake record carrying messages.
func TLSRecord(messages ...Message) []byte {
	var body []byte
	for _, m := range messages {
		hdr := format.TLSHandshakeHeader{HandshakeType: m.Type, Length: m.length()}
		body = hdr.Write(body)
		body = append(body, m.Body...)
	}
	hdr := format.TLSRecordHeader{ContentType: format.PlaintextContentTypeHandshake, Version: VersionTLS12}
	record := hdr.Write(nil, len(body))
	return append(record, body...)
}
