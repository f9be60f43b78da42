// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package format

// CertificateList walks the body of a (D)TLS 1.2 Certificate message [rfc5246:7.4.2].
// Entries are yielded as aliases of body, so they must be decoded or copied before
// the datagram buffer is reused.
//
// Lengths are trusted only as far as the captured bytes go: an entry declaring more
// bytes than remain is cut short, and walking stops once fewer than 4 bytes are left.
type CertificateList struct {
	body   []byte
	offset int
}

func (msg *CertificateList) Parse(body []byte) (err error) {
	// total length is repeated by the handshake header, not checked
	offset, _, err := ParserReadUint24(body, 0)
	if err != nil {
		return err
	}
	msg.body = body
	msg.offset = offset
	return nil
}

// Next returns the next certificate DER, ok is false when the list is exhausted.
func (msg *CertificateList) Next() (certData []byte, ok bool) {
	if len(msg.body)-msg.offset < 4 {
		return nil, false
	}
	offset, certData, err := ParserReadUint24LengthClamped(msg.body, msg.offset)
	if err != nil { // never, checked above
		return nil, false
	}
	msg.offset = offset
	return certData, true
}

// AppendCertificateList writes a Certificate message body with the given entries.
func AppendCertificateList(body []byte, certs ...[]byte) []byte {
	body, mark := MarkUint24Offset(body)
	for _, c := range certs {
		var insideMark int
		body, insideMark = MarkUint24Offset(body)
		body = append(body, c...)
		FillUint24Offset(body, insideMark)
	}
	FillUint24Offset(body, mark)
	return body
}
