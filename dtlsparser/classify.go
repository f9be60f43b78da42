// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package dtlsparser

import (
	"bytes"

	"github.com/hrissan/dtlscerts/constants"
	"github.com/hrissan/dtlscerts/format"
)

// handshake content type followed by DTLS 1.0 (OpenSSL pre-standard), 1.0, 1.2 (1.3 on the wire) versions
var dtlsPrefixes = [][]byte{
	{format.PlaintextContentTypeHandshake, 0x01, 0x00},
	{format.PlaintextContentTypeHandshake, 0xfe, 0xff},
	{format.PlaintextContentTypeHandshake, 0xfe, 0xfe},
	{format.PlaintextContentTypeHandshake, 0xfe, 0xfd},
}

// Classify tells if the first datagram of a UDP flow is a DTLS ClientHello.
func Classify(datagram []byte) bool {
	if len(datagram) < constants.MinClassifyDatagramLength ||
		datagram[format.PlaintextRecordHeaderSize] != format.HandshakeTypeClientHello {
		return false
	}
	for _, prefix := range dtlsPrefixes {
		if bytes.HasPrefix(datagram, prefix) {
			return true
		}
	}
	return false
}

// ClassifyTLS tells if the first segment of a TCP flow is a TLS ClientHello.
func ClassifyTLS(stream []byte) bool {
	return len(stream) > format.TLSRecordHeaderSize &&
		stream[0] == format.PlaintextContentTypeHandshake &&
		stream[1] == 0x03 && stream[2] <= 0x04 &&
		stream[format.TLSRecordHeaderSize] == format.HandshakeTypeClientHello
}
