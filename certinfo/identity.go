// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package certinfo

import (
	"bytes"
)

// Hash is a coarse bucket for deduplication, Equal decides on collision.
//
//	bits 31..28  low nibble of the first serial byte
//	bits 27..24  low nibble of the last serial byte
//	bits 23..18  issuer commonName count
//	bits 17..12  issuer organizationName count
//	bits 11..6   subject commonName count
//	bits  5..0   subject organizationName count
//
// Counts above 63 saturate.
func Hash(ci *CertificateInfo) uint32 {
	var h uint32
	if n := len(ci.SerialNumber); n != 0 {
		h = uint32(ci.SerialNumber[0]&0x0F)<<28 | uint32(ci.SerialNumber[n-1]&0x0F)<<24
	}
	return h |
		count6(len(ci.Issuer.CommonName))<<18 |
		count6(len(ci.Issuer.OrganizationName))<<12 |
		count6(len(ci.Subject.CommonName))<<6 |
		count6(len(ci.Subject.OrganizationName))
}

func count6(n int) uint32 {
	if n > 0x3F {
		return 0x3F
	}
	return uint32(n)
}

// Equal compares serial number and the six name lists, in order.
// Validity, alt names, key usage and public key do not take part in identity.
func Equal(a, b *CertificateInfo) bool {
	if !bytes.Equal(a.SerialNumber, b.SerialNumber) {
		return false
	}
	la := [2][3][]NameString{a.Issuer.lists(), a.Subject.lists()}
	lb := [2][3][]NameString{b.Issuer.lists(), b.Subject.lists()}
	for i := range la {
		for j := range la[i] {
			if len(la[i][j]) != len(lb[i][j]) {
				return false
			}
		}
	}
	for i := range la {
		for j := range la[i] {
			for k := range la[i][j] {
				if la[i][j][k].Value != lb[i][j][k].Value {
					return false
				}
			}
		}
	}
	return true
}
