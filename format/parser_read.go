// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package format

import (
	"encoding/binary"
	"errors"
)

var ErrMessageBodyTooShort = errors.New("message body too short")
func ParserReadByte(body []byte, offset int) (_ int, value byte, err error) {
	if len(body) < offset+1 {
		return offset, 0, ErrMessageBodyTooShort
	}
	return offset + 1, body[offset], nil
}

func ParserReadUint16(body []byte, offset int) (_ int, value uint16, err error) {
	if len(body) < offset+2 {
		return offset, 0, ErrMessageBodyTooShort
	}
	return offset + 2, binary.BigEndian.Uint16(body[offset:]), nil
}

func ParserReadUint24(body []byte, offset int) (_ int, value uint32, err error) {
	if len(body) < offset+3 {
		return offset, 0, ErrMessageBodyTooShort
	}
	return offset + 3, readUint24(body[offset:]), nil
}

func ParserReadUint16Length(body []byte, offset int) (_ int, value []byte, err error) {
	if len(body) < offset+2 {
		return offset, nil, ErrMessageBodyTooShort
	}
	endOffset := offset + 2 + int(binary.BigEndian.Uint16(body[offset:]))
	if len(body) < endOffset {
		return offset, nil, ErrMessageBodyTooShort
	}
	return endOffset, body[offset+2 : endOffset], nil
}

// ParserReadUint24LengthClamped reads a 24-bit length prefixed vector of captured
// traffic, a length running past the end of body is cut to what is left.
func ParserReadUint24LengthClamped(body []byte, offset int) (_ int, value []byte, err error) {
	if len(body) < offset+3 {
		return offset, nil, ErrMessageBodyTooShort
	}
	endOffset := offset + 3 + int(readUint24(body[offset:]))
	if len(body) < endOffset {
		endOffset = len(body)
	}
	return endOffset, body[offset+3 : endOffset], nil
}

func ParserSkip(body []byte, offset int, length int) (_ int, err error) {
	if length < 0 || len(body) < offset+length {
		return offset, ErrMessageBodyTooShort
	}
	return offset + length, nil
}

func readUint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}
