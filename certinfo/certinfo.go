// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

// Package certinfo decodes the identity part of X.509 certificates seen in
// captured handshakes. It is a permissive reader, not a validator: signatures,
// chains and revocation are never looked at.
package certinfo

import (
	"github.com/hrissan/dtlscerts/constants"
)

// NameString is one attribute value from an issuer or subject Name.
type NameString struct {
	Value string
	UTF8  bool // encoded as UTF8String, otherwise PrintableString or TeletexString
}

// NameAttributes keeps the attributes we recognize in wire order.
// Order matters for Equal, not only membership.
type NameAttributes struct {
	CommonName             []NameString // 2.5.4.3, lower-cased
	OrganizationName       []NameString // 2.5.4.10
	OrganizationalUnitName []NameString // 2.5.4.11
}

type CertificateInfo struct {
	NotBefore int64 // Unix seconds
	NotAfter  int64 // Unix seconds

	Issuer  NameAttributes
	Subject NameAttributes

	AltNames     []string // subjectAltName dNSName entries, lower-cased
	SerialNumber []byte   // INTEGER content as encoded, sign byte included
	IsCA         bool

	PublicAlgorithm string
	Curve           string

	// SHA-1 of the certificate DER, not part of identity
	Fingerprint string
}

type DecodeOptions struct {
	// Walkers fail the decode when structures nest deeper than this,
	// 0 or less means constants.MaxASN1Depth
	MaxDepth int
	// Stop walking extensions once subjectAltName produced names
	FirstAltNamesOnly bool
	// Describe subjectPublicKeyInfo in PublicAlgorithm and Curve
	PopulatePublicKey bool
}

func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		MaxDepth:          constants.MaxASN1Depth,
		FirstAltNamesOnly: true,
		PopulatePublicKey: true,
	}
}

func (na *NameAttributes) lists() [3][]NameString {
	return [3][]NameString{na.CommonName, na.OrganizationName, na.OrganizationalUnitName}
}

// Values returns plain strings of a list, for output.
func Values(list []NameString) []string {
	if len(list) == 0 {
		return nil
	}
	result := make([]string, len(list))
	for i, s := range list {
		result[i] = s.Value
	}
	return result
}
