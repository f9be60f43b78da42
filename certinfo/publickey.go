// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package certinfo

import (
	"github.com/hrissan/dtlscerts/asn1tlv"
)

// short names as printed by openssl
var publicKeyAlgorithmNames = map[string]string{
	"1.2.840.113549.1.1.1":  "rsaEncryption",
	"1.2.840.113549.1.1.10": "rsassaPss",
	"1.2.840.10040.4.1":     "dsaEncryption",
	"1.2.840.10045.2.1":     "id-ecPublicKey",
	"1.3.101.110":           "X25519",
	"1.3.101.111":           "X448",
	"1.3.101.112":           "ED25519",
	"1.3.101.113":           "ED448",
}

var curveNames = map[string]string{
	"1.2.840.10045.3.1.7":   "prime256v1",
	"1.3.132.0.10":          "secp256k1",
	"1.3.132.0.34":          "secp384r1",
	"1.3.132.0.35":          "secp521r1",
	"1.3.36.3.3.2.8.1.1.7":  "brainpoolP256r1",
	"1.3.36.3.3.2.8.1.1.11": "brainpoolP384r1",
	"1.3.36.3.3.2.8.1.1.13": "brainpoolP512r1",
}

func nameOrOID(names map[string]string, oid string) string {
	if name, ok := names[oid]; ok {
		return name
	}
	return oid
}

// describePublicKey reads AlgorithmIdentifier of SubjectPublicKeyInfo.
// Anything unexpected leaves the results empty, the key is informational only.
func describePublicKey(spki asn1tlv.Node) (algorithm string, curve string) {
	c := spki.Children()
	algorithmIdentifier, ok := c.Next()
	if !ok || !algorithmIdentifier.Constructed {
		return "", ""
	}
	c = algorithmIdentifier.Children()
	n, ok := c.Next()
	if !ok {
		return "", ""
	}
	oid, err := asn1tlv.DecodeOID(n)
	if err != nil {
		return "", ""
	}
	algorithm = nameOrOID(publicKeyAlgorithmNames, oid)
	// namedCurve parameters of id-ecPublicKey [rfc5480:2.1.1]
	if params, ok := c.Next(); ok && params.Tag == asn1tlv.TagOID {
		if curveOID, err := asn1tlv.DecodeOID(params); err == nil {
			curve = nameOrOID(curveNames, curveOID)
		}
	}
	return algorithm, curve
}
