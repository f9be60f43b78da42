// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

// Package asn1tlv reads DER one tag-length-value node at a time.
//
// Lengths are strict: a node whose declared length runs past the end of the
// buffer is malformed, so a truncated certificate never parses as a shorter one.
package asn1tlv

import (
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Universal tag numbers we look at
const (
	TagBoolean         = 1
	TagInteger         = 2
	TagBitString       = 3
	TagOctetString     = 4
	TagOID             = 6
	TagUTF8String      = 12
	TagSequence        = 16
	TagSet             = 17
	TagPrintableString = 19
	TagTeletexString   = 20
	TagUTCTime         = 23
	TagGeneralizedTime = 24
)

const (
	ClassUniversal       = 0x00
	ClassApplication     = 0x40
	ClassContextSpecific = 0x80
	ClassPrivate         = 0xC0
)

// Node is one TLV. Raw and Value alias the cursor buffer.
// Certificate walkers match on Tag alone and ignore Class, so a context
// specific [2] dNSName and a universal INTEGER look the same to them.
type Node struct {
	Constructed bool
	Class       byte
	Tag         int    // tag number without class and constructed bits
	Raw         []byte // whole element, header included
	Value       []byte
}

// Cursor is a position in a DER byte slice.
type Cursor struct {
	s cryptobyte.String
}

func NewCursor(b []byte) Cursor {
	return Cursor{s: cryptobyte.String(b)}
}

// Children returns a cursor over the content of n.
func (n Node) Children() Cursor {
	return NewCursor(n.Value)
}

func (c *Cursor) Remaining() int { return len(c.s) }
func (c *Cursor) Empty() bool    { return c.s.Empty() }

// Next reads one node. ok is false when the cursor is exhausted or the next
// header is malformed, the cursor is not advanced then.
func (c *Cursor) Next() (n Node, ok bool) {
	var element cryptobyte.String
	var tag cryptobyte_asn1.Tag
	if !c.s.ReadAnyASN1Element(&element, &tag) {
		return Node{}, false
	}
	raw := []byte(element)
	var value cryptobyte.String
	if !element.ReadAnyASN1(&value, &tag) { // never, element is already checked
		return Node{}, false
	}
	return Node{
		Constructed: tag&0x20 != 0,
		Class:       byte(tag) & 0xC0,
		Tag:         int(tag & 0x1F),
		Raw:         raw,
		Value:       []byte(value),
	}, true
}
