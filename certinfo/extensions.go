// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package certinfo

import (
	"github.com/hrissan/dtlscerts/asn1tlv"
)

const (
	oidKeyUsage       = "2.5.29.15"
	oidSubjectAltName = "2.5.29.17"
)

// walkExtensions looks for keyUsage and subjectAltName anywhere under Extensions.
//
// Only subjectAltName leaves the pending OID armed, so the following extnValue
// (OCTET STRING) is opened as GeneralNames and its dNSName ([2]) entries are
// collected. armed carries that state into the nested walk. After a constructed
// child the pending OID of this level is cleared.
func (d *decoder) walkExtensions(ci *CertificateInfo, c asn1tlv.Cursor, armed bool, depth int) error {
	if depth > d.opts.MaxDepth {
		return errTooDeep
	}
	pending := armed
	for c.Remaining() >= 2 {
		n, ok := c.Next()
		if !ok {
			return nil
		}
		switch {
		case n.Constructed:
			if err := d.walkExtensions(ci, n.Children(), pending, depth+1); err != nil {
				return err
			}
			pending = false
			if d.opts.FirstAltNamesOnly && len(ci.AltNames) != 0 {
				return nil
			}
		case n.Tag == asn1tlv.TagOID:
			oid, _ := asn1tlv.DecodeOID(n)
			if oid == oidKeyUsage {
				readKeyUsage(ci, &c)
			}
			pending = oid == oidSubjectAltName
		case pending && n.Tag == asn1tlv.TagOctetString:
			// nothing follows extnValue inside one Extension
			return d.walkExtensions(ci, n.Children(), true, depth+1)
		case pending && n.Tag == 2: // dNSName [2] IMPLICIT IA5String
			ci.AltNames = append(ci.AltNames, asciiLower(n.Value))
		}
	}
	return nil
}

// readKeyUsage consumes the rest of a keyUsage Extension, the extnValue is the
// OCTET STRING after the optional critical BOOLEAN.
func readKeyUsage(ci *CertificateInfo, c *asn1tlv.Cursor) {
	for c.Remaining() >= 2 {
		n, ok := c.Next()
		if !ok {
			return
		}
		if !n.Constructed && n.Tag == asn1tlv.TagOctetString {
			if isCA, ok := KeyUsageIsCA(n.Value); ok {
				ci.IsCA = isCA
			}
		}
	}
}

// KeyUsageIsCA tests bit 0x02 of byte 3 of a DER keyUsage BIT STRING
// (03 len unused bits...). ok is false for values shorter than 4 bytes.
func KeyUsageIsCA(value []byte) (isCA bool, ok bool) {
	if len(value) < 4 {
		return false, false
	}
	return value[3]&0x02 != 0, true
}
