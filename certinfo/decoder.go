// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package certinfo

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hrissan/dtlscerts/asn1tlv"
	"github.com/hrissan/dtlscerts/constants"
)

// decoder state lives for one Decode call, cases.Caser is not safe to share
type decoder struct {
	opts  DecodeOptions
	lower cases.Caser
}

// Decode walks the fixed Certificate schema [rfc5280:4.1] positionally.
// On any failure it returns nil and a *DecodeError naming the step,
// no partially filled CertificateInfo ever leaves this function.
func Decode(der []byte, opts DecodeOptions) (*CertificateInfo, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = constants.MaxASN1Depth
	}
	d := decoder{opts: opts, lower: cases.Lower(language.Und)}
	return d.decode(der)
}

func (d *decoder) decode(der []byte) (*CertificateInfo, error) {
	c := asn1tlv.NewCursor(der)
	certificate, ok := c.Next()
	if !ok {
		return nil, ErrCertificateMissing
	}
	c = certificate.Children()
	tbsCertificate, ok := c.Next()
	if !ok {
		return nil, ErrTBSCertificateMissing
	}
	c = tbsCertificate.Children()

	// version [0] EXPLICIT is optional, serialNumber is not
	serialNumber, ok := c.Next()
	if !ok {
		return nil, ErrSerialOrVersionMissing
	}
	if serialNumber.Constructed {
		if serialNumber, ok = c.Next(); !ok {
			return nil, ErrSerialMissing
		}
	}
	ci := &CertificateInfo{SerialNumber: bytes.Clone(serialNumber.Value)}

	if _, ok := c.Next(); !ok { // signature AlgorithmIdentifier
		return nil, ErrSignatureMissing
	}

	issuer, ok := c.Next()
	if !ok {
		return nil, ErrIssuerMissing
	}
	if err := d.walkName(&ci.Issuer, issuer.Children(), 1); err != nil {
		return nil, ErrIssuerMissing
	}

	validity, ok := c.Next()
	if !ok {
		return nil, ErrValidityMissing
	}
	if err := d.readValidity(ci, validity); err != nil {
		return nil, err
	}

	subject, ok := c.Next()
	if !ok {
		return nil, ErrSubjectMissing
	}
	if err := d.walkName(&ci.Subject, subject.Children(), 1); err != nil {
		return nil, ErrSubjectMissing
	}

	subjectPublicKeyInfo, ok := c.Next()
	if !ok {
		return nil, ErrPublicKeyInfoMissing
	}
	if d.opts.PopulatePublicKey {
		ci.PublicAlgorithm, ci.Curve = describePublicKey(subjectPublicKeyInfo)
	}

	if !c.Empty() {
		extensions, ok := c.Next()
		if !ok {
			return nil, ErrExtensionsMalformed
		}
		if err := d.walkExtensions(ci, extensions.Children(), false, 1); err != nil {
			return nil, ErrExtensionsMalformed
		}
	}

	ci.Fingerprint = fingerprint(certificate.Raw)
	return ci, nil
}

func (d *decoder) readValidity(ci *CertificateInfo, validity asn1tlv.Node) (err error) {
	c := validity.Children()
	notBefore, ok := c.Next()
	if !ok {
		return ErrValidityMissing
	}
	if ci.NotBefore, err = asn1tlv.ParseTime(notBefore); err != nil {
		return ErrValidityMissing
	}
	notAfter, ok := c.Next()
	if !ok {
		return ErrValidityMissing
	}
	if ci.NotAfter, err = asn1tlv.ParseTime(notAfter); err != nil {
		return ErrValidityMissing
	}
	return nil
}

// colon separated lower hex, as in "aa:bb:..."
func fingerprint(der []byte) string {
	sum := sha1.Sum(der)
	b := make([]byte, 0, len(sum)*3)
	for i, v := range sum {
		if i != 0 {
			b = append(b, ':')
		}
		b = hex.AppendEncode(b, []byte{v})
	}
	return string(b)
}
