// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package format

import (
	"encoding/binary"
	"errors"
)

var ErrMessageHandshakeTooShort = errors.New("message handshake too short")

const MessageHandshakeHeaderSize = 12
const TLSHandshakeHeaderSize = 4

const (
	HandshakeTypeHelloRequest       = 0
	HandshakeTypeClientHello        = 1
	HandshakeTypeServerHello        = 2
	HandshakeTypeHelloVerifyRequest = 3
	HandshakeTypeNewSessionTicket   = 4
	HandshakeTypeCertificate        = 11
	HandshakeTypeServerKeyExchange  = 12
	HandshakeTypeCertificateRequest = 13
	HandshakeTypeServerHelloDone    = 14
	HandshakeTypeCertificateVerify  = 15
	HandshakeTypeClientKeyExchange  = 16
	HandshakeTypeFinished           = 20
)

func HandshakeTypeToName(t byte) string {
	switch t {
	case HandshakeTypeHelloRequest:
		return "hello_request"
	case HandshakeTypeClientHello:
		return "client_hello"
	case HandshakeTypeServerHello:
		return "server_hello"
	case HandshakeTypeHelloVerifyRequest:
		return "hello_verify_request"
	case HandshakeTypeNewSessionTicket:
		return "new_session_ticket"
	case HandshakeTypeCertificate:
		return "certificate"
	case HandshakeTypeServerKeyExchange:
		return "server_key_exchange"
	case HandshakeTypeCertificateRequest:
		return "certificate_request"
	case HandshakeTypeServerHelloDone:
		return "server_hello_done"
	case HandshakeTypeCertificateVerify:
		return "certificate_verify"
	case HandshakeTypeClientKeyExchange:
		return "client_key_exchange"
	case HandshakeTypeFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// MessageHandshakeHeader is the DTLS handshake header [rfc6347:4.2.2].
// Parse reads only the header, Length is not checked against the record here,
// so the caller decides what to do with short or fragmented messages.
type MessageHandshakeHeader struct {
	HandshakeType  byte
	Length         uint32 // stored as 24-bit
	MessageSeq     uint16
	FragmentOffset uint32 // stored as 24-bit
	FragmentLength uint32 // stored as 24-bit
}

func (hdr *MessageHandshakeHeader) IsFragmented() bool {
	return hdr.FragmentOffset != 0 || hdr.FragmentLength != hdr.Length
}

func (hdr *MessageHandshakeHeader) Parse(record []byte, offset int) (_ int, err error) {
	if len(record) < offset+MessageHandshakeHeaderSize {
		return offset, ErrMessageHandshakeTooShort
	}
	// cannot fail after the size check
	offset, hdr.HandshakeType, _ = ParserReadByte(record, offset)
	offset, hdr.Length, _ = ParserReadUint24(record, offset)
	offset, hdr.MessageSeq, _ = ParserReadUint16(record, offset)
	offset, hdr.FragmentOffset, _ = ParserReadUint24(record, offset)
	offset, hdr.FragmentLength, _ = ParserReadUint24(record, offset)
	return offset, nil
}

func (hdr *MessageHandshakeHeader) Write(datagram []byte) []byte {
	datagram = append(datagram, hdr.HandshakeType)
	datagram = AppendUint24(datagram, hdr.Length)
	datagram = binary.BigEndian.AppendUint16(datagram, hdr.MessageSeq)
	datagram = AppendUint24(datagram, hdr.FragmentOffset)
	datagram = AppendUint24(datagram, hdr.FragmentLength)
	return datagram
}

// TLSHandshakeHeader is the TLS handshake header [rfc5246:7.4], no fragment fields.
type TLSHandshakeHeader struct {
	HandshakeType byte
	Length        uint32 // stored as 24-bit
}

func (hdr *TLSHandshakeHeader) Parse(record []byte, offset int) (_ int, err error) {
	if len(record) < offset+TLSHandshakeHeaderSize {
		return offset, ErrMessageHandshakeTooShort
	}
	offset, hdr.HandshakeType, _ = ParserReadByte(record, offset)
	offset, hdr.Length, _ = ParserReadUint24(record, offset)
	return offset, nil
}

func (hdr *TLSHandshakeHeader) Write(stream []byte) []byte {
	stream = append(stream, hdr.HandshakeType)
	return AppendUint24(stream, hdr.Length)
}
