// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package certinfo

import (
	"github.com/hrissan/dtlscerts/asn1tlv"
)

const (
	oidCommonName             = "2.5.4.3"
	oidOrganizationName       = "2.5.4.10"
	oidOrganizationalUnitName = "2.5.4.11"
)

// walkName collects attributes of a Name (SEQUENCE OF SET OF AttributeTypeAndValue).
// Any constructed node is followed, so multi-valued RDNs need no special case.
// The pending OID belongs to one level, a nested walk starts without one.
func (d *decoder) walkName(attrs *NameAttributes, c asn1tlv.Cursor, depth int) error {
	if depth > d.opts.MaxDepth {
		return errTooDeep
	}
	lastOID := ""
	for !c.Empty() {
		n, ok := c.Next()
		if !ok {
			return nil
		}
		switch {
		case n.Constructed:
			if err := d.walkName(attrs, n.Children(), depth+1); err != nil {
				return err
			}
		case n.Tag == asn1tlv.TagOID:
			lastOID, _ = asn1tlv.DecodeOID(n) // unknown or malformed OIDs simply match nothing
		case lastOID != "" && isNameStringTag(n.Tag):
			utf8 := n.Tag == asn1tlv.TagUTF8String
			switch lastOID {
			case oidCommonName:
				attrs.CommonName = append(attrs.CommonName, NameString{Value: d.lowerName(n.Value, utf8), UTF8: utf8})
			case oidOrganizationName:
				attrs.OrganizationName = append(attrs.OrganizationName, NameString{Value: string(n.Value), UTF8: utf8})
			case oidOrganizationalUnitName:
				attrs.OrganizationalUnitName = append(attrs.OrganizationalUnitName, NameString{Value: string(n.Value), UTF8: utf8})
			}
		}
	}
	return nil
}

func isNameStringTag(tag int) bool {
	return tag == asn1tlv.TagPrintableString || tag == asn1tlv.TagTeletexString || tag == asn1tlv.TagUTF8String
}

// commonName compares case-insensitively, so it is stored folded
func (d *decoder) lowerName(value []byte, utf8 bool) string {
	if utf8 {
		return d.lower.String(string(value))
	}
	return asciiLower(value)
}

func asciiLower(value []byte) string {
	b := make([]byte, len(value))
	for i, c := range value {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}
