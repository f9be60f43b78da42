// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package certinfo

import (
	"errors"
	"fmt"
)

// we do not allocate on the error path, certificates fail to decode often,
// so all decode errors are static and carry the step that failed

type DecodeError struct {
	reason int
	text   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bad certificate %d: %s", e.reason, e.text)
}

// Reason is 1..10, the schema step which failed.
func (e *DecodeError) Reason() int { return e.reason }

func newDecodeError(reason int, text string) *DecodeError {
	return &DecodeError{reason: reason, text: text}
}

var ErrCertificateMissing = newDecodeError(1, "Certificate sequence missing")
var ErrTBSCertificateMissing = newDecodeError(2, "TBSCertificate sequence missing")
var ErrSerialOrVersionMissing = newDecodeError(3, "serialNumber or version missing")
var ErrSerialMissing = newDecodeError(4, "serialNumber missing after version")
var ErrSignatureMissing = newDecodeError(5, "signature algorithm missing")
var ErrIssuerMissing = newDecodeError(6, "issuer missing or too deep")
var ErrValidityMissing = newDecodeError(7, "validity missing or malformed")
var ErrSubjectMissing = newDecodeError(8, "subject missing or too deep")
var ErrPublicKeyInfoMissing = newDecodeError(9, "subjectPublicKeyInfo missing")
var ErrExtensionsMalformed = newDecodeError(10, "extensions malformed or too deep")

// returned by walkers, mapped to the step error by the decoder
var errTooDeep = errors.New("asn.1 nesting too deep")

// ReasonOf returns the step number of a decode error, 0 for other errors.
func ReasonOf(err error) int {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.reason
	}
	return 0
}
