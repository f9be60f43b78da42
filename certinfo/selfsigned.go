// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package certinfo

// LooksSelfSigned compares issuer and subject names, no signature is checked.
// True when the certificate is not a CA, organization names are both absent or
// both a single equal value, and commonName is a single equal value on both sides.
func LooksSelfSigned(ci *CertificateInfo) bool {
	if ci.IsCA {
		return false
	}
	issuerON, subjectON := ci.Issuer.OrganizationName, ci.Subject.OrganizationName
	sameOrganization := (len(issuerON) == 0 && len(subjectON) == 0) ||
		(len(issuerON) == 1 && len(subjectON) == 1 && issuerON[0].Value == subjectON[0].Value)
	if !sameOrganization {
		return false
	}
	issuerCN, subjectCN := ci.Issuer.CommonName, ci.Subject.CommonName
	return len(issuerCN) == 1 && len(subjectCN) == 1 && issuerCN[0].Value == subjectCN[0].Value
}
