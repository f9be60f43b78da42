// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

// Package dtlstest builds certificates and captured handshake traffic for tests.
package dtlstest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	encoding_asn1 "encoding/asn1"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	OIDCommonName             = encoding_asn1.ObjectIdentifier{2, 5, 4, 3}
	OIDCountry                = encoding_asn1.ObjectIdentifier{2, 5, 4, 6}
	OIDOrganizationName       = encoding_asn1.ObjectIdentifier{2, 5, 4, 10}
	OIDOrganizationalUnitName = encoding_asn1.ObjectIdentifier{2, 5, 4, 11}
)

// string types of attribute values
const (
	UTF8String      = 12
	PrintableString = 19
	TeletexString   = 20
)

type Attribute struct {
	Type   encoding_asn1.ObjectIdentifier
	Value  string
	String int // one of UTF8String, PrintableString, TeletexString, 0 means PrintableString
}

// RDN is one SET, several attributes make it multi-valued.
type RDN []Attribute

type Name []RDN

func CN(value string) RDN { return RDN{{Type: OIDCommonName, Value: value}} }
func O(value string) RDN  { return RDN{{Type: OIDOrganizationName, Value: value}} }
func OU(value string) RDN { return RDN{{Type: OIDOrganizationalUnitName, Value: value}} }

func UTF8CN(value string) RDN {
	return RDN{{Type: OIDCommonName, Value: value, String: UTF8String}}
}

// Marshal returns DER of the Name.
func (name Name) Marshal() []byte {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, rdn := range name {
			b.AddASN1(cryptobyte_asn1.SET, func(b *cryptobyte.Builder) {
				for _, attr := range rdn {
					tag := attr.String
					if tag == 0 {
						tag = PrintableString
					}
					b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
						b.AddASN1ObjectIdentifier(attr.Type)
						b.AddASN1(cryptobyte_asn1.Tag(tag), func(b *cryptobyte.Builder) {
							b.AddBytes([]byte(attr.Value))
						})
					})
				}
			})
		}
	})
	return b.BytesOrPanic()
}

type CertificateTemplate struct {
	SerialNumber *big.Int // 1 when nil
	Issuer       Name
	Subject      Name
	NotBefore    time.Time
	NotAfter     time.Time
	DNSNames     []string
	KeyUsage     x509.KeyUsage
}

// Certificate signs the template with a fresh P-256 key. The issuer name is
// taken verbatim, so any issuer/subject combination can be produced.
func Certificate(tmpl CertificateTemplate) ([]byte, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	serial := tmpl.SerialNumber
	if serial == nil {
		serial = big.NewInt(1)
	}
	template := &x509.Certificate{
		SerialNumber: serial,
		RawSubject:   tmpl.Subject.Marshal(),
		NotBefore:    tmpl.NotBefore,
		NotAfter:     tmpl.NotAfter,
		DNSNames:     tmpl.DNSNames,
		KeyUsage:     tmpl.KeyUsage,
	}
	parent := &x509.Certificate{
		RawSubject: tmpl.Issuer.Marshal(),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("creating certificate: %w", err)
	}
	return der, nil
}

// MustCertificate is Certificate for tests, which have no use for the error.
func MustCertificate(tmpl CertificateTemplate) []byte {
	der, err := Certificate(tmpl)
	if err != nil {
		panic(err)
	}
	return der
}

// ExampleCom is a self-signed looking certificate for example.com with one alt name.
func ExampleCom() CertificateTemplate {
	return CertificateTemplate{
		SerialNumber: big.NewInt(0x1234),
		Issuer:       Name{CN("example.com")},
		Subject:      Name{CN("example.com")},
		NotBefore:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DNSNames:     []string{"www.example.com"},
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
}
