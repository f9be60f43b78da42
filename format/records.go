// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package format

import (
	"encoding/binary"
	"errors"
	"math"
)

const PlaintextRecordHeaderSize = 13
const TLSRecordHeaderSize = 5

const PlaintextContentTypeHandshake = 22

var ErrPlaintextRecordHeaderTooShort = errors.New("plaintext record header too short")
var ErrPlaintextRecordBodyTooShort = errors.New("plaintext record body too short")

// PlaintextRecordHeader is DTLSPlaintext header [rfc6347:4.1].
// Captured traffic is parsed positionally, version and epoch are stored but never checked.
type PlaintextRecordHeader struct {
	ContentType    byte
	Version        uint16
	Epoch          uint16
	SequenceNumber uint64 // stored as 48-bit
	// Length is checked, not stored
}

func (hdr *PlaintextRecordHeader) Parse(datagram []byte) (n int, body []byte, err error) {
	if len(datagram) < PlaintextRecordHeaderSize {
		return 0, nil, ErrPlaintextRecordHeaderTooShort
	}
	// cannot fail after the size check
	var offset int
	offset, hdr.ContentType, _ = ParserReadByte(datagram, 0)
	offset, hdr.Version, _ = ParserReadUint16(datagram, offset)
	offset, hdr.Epoch, _ = ParserReadUint16(datagram, offset)
	hdr.SequenceNumber = binary.BigEndian.Uint64(datagram[offset-2:offset+6]) & 0xFFFFFFFFFFFF
	n, body, err = ParserReadUint16Length(datagram, offset+6)
	if err != nil {
		return 0, nil, ErrPlaintextRecordBodyTooShort
	}
	return n, body, nil
}

func (hdr *PlaintextRecordHeader) Write(datagram []byte, length int) []byte {
	datagram = append(datagram, hdr.ContentType)
	datagram = binary.BigEndian.AppendUint16(datagram, hdr.Version)
	datagram = binary.BigEndian.AppendUint16(datagram, hdr.Epoch)
	datagram = AppendUint48(datagram, hdr.SequenceNumber)
	if length < 0 || length > math.MaxUint16 {
		panic("length of plaintext record out of range")
	}
	datagram = binary.BigEndian.AppendUint16(datagram, uint16(length))
	return datagram
}

// TLSRecordHeader is TLSPlaintext header [rfc5246:6.2.1], used when the same
// certificate messages are seen over a stream transport.
type TLSRecordHeader struct {
	ContentType byte
	Version     uint16
}

func (hdr *TLSRecordHeader) Parse(stream []byte) (n int, body []byte, err error) {
	if len(stream) < TLSRecordHeaderSize {
		return 0, nil, ErrPlaintextRecordHeaderTooShort
	}
	var offset int
	offset, hdr.ContentType, _ = ParserReadByte(stream, 0)
	offset, hdr.Version, _ = ParserReadUint16(stream, offset)
	n, body, err = ParserReadUint16Length(stream, offset)
	if err != nil {
		return 0, nil, ErrPlaintextRecordBodyTooShort
	}
	return n, body, nil
}

func (hdr *TLSRecordHeader) Write(stream []byte, length int) []byte {
	stream = append(stream, hdr.ContentType)
	stream = binary.BigEndian.AppendUint16(stream, hdr.Version)
	if length < 0 || length > math.MaxUint16 {
		panic("length of tls record out of range")
	}
	return binary.BigEndian.AppendUint16(stream, uint16(length))
}
