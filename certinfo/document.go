// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package certinfo

import (
	"encoding/hex"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Document is the serialized shape of a CertificateInfo, field names are
// shared with the session database.
type Document struct {
	Hash             string   `json:"hash,omitempty" yaml:"hash,omitempty"`
	PublicAlgorithm  string   `json:"publicAlgorithm,omitempty" yaml:"publicAlgorithm,omitempty"`
	Curve            string   `json:"curve,omitempty" yaml:"curve,omitempty"`
	IssuerCN         []string `json:"issuerCN,omitempty" yaml:"issuerCN,omitempty"`
	IssuerON         []string `json:"issuerON,omitempty" yaml:"issuerON,omitempty"`
	IssuerOU         []string `json:"issuerOU,omitempty" yaml:"issuerOU,omitempty"`
	SubjectCN        []string `json:"subjectCN,omitempty" yaml:"subjectCN,omitempty"`
	SubjectON        []string `json:"subjectON,omitempty" yaml:"subjectON,omitempty"`
	SubjectOU        []string `json:"subjectOU,omitempty" yaml:"subjectOU,omitempty"`
	Serial           string   `json:"serial" yaml:"serial"`
	AltCnt           int      `json:"altCnt,omitempty" yaml:"altCnt,omitempty"`
	Alt              []string `json:"alt,omitempty" yaml:"alt,omitempty"`
	NotBefore        int64    `json:"notBefore" yaml:"notBefore"` // milliseconds
	NotAfter         int64    `json:"notAfter" yaml:"notAfter"`   // milliseconds
	RemainingDays    int64    `json:"remainingDays" yaml:"remainingDays"`
	RemainingSeconds int64    `json:"remainingSeconds" yaml:"remainingSeconds"`
	ValidDays        int64    `json:"validDays" yaml:"validDays"`
	ValidSeconds     int64    `json:"validSeconds" yaml:"validSeconds"`
}

// NewDocument fills the remaining-validity fields relative to reference,
// usually the time of the last packet of the session. Expired certificates
// have 0 remaining.
func NewDocument(ci *CertificateInfo, reference time.Time) Document {
	remaining := ci.NotAfter - reference.Unix()
	if remaining < 0 {
		remaining = 0
	}
	valid := ci.NotAfter - ci.NotBefore
	return Document{
		Hash:             ci.Fingerprint,
		PublicAlgorithm:  ci.PublicAlgorithm,
		Curve:            ci.Curve,
		IssuerCN:         Values(ci.Issuer.CommonName),
		IssuerON:         Values(ci.Issuer.OrganizationName),
		IssuerOU:         Values(ci.Issuer.OrganizationalUnitName),
		SubjectCN:        Values(ci.Subject.CommonName),
		SubjectON:        Values(ci.Subject.OrganizationName),
		SubjectOU:        Values(ci.Subject.OrganizationalUnitName),
		Serial:           hex.EncodeToString(ci.SerialNumber),
		AltCnt:           len(ci.AltNames),
		Alt:              ci.AltNames,
		NotBefore:        ci.NotBefore * 1000,
		NotAfter:         ci.NotAfter * 1000,
		RemainingDays:    remaining / secondsPerDay,
		RemainingSeconds: remaining,
		ValidDays:        valid / secondsPerDay,
		ValidSeconds:     valid,
	}
}
