// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package asn1tlv

import (
	encoding_asn1 "encoding/asn1"
	"errors"
	"time"

	"golang.org/x/crypto/cryptobyte"
)

var ErrBadOID = errors.New("malformed object identifier")
var ErrBadTime = errors.New("malformed time")
var ErrUnsupportedTimeTag = errors.New("time node is neither UTCTime nor GeneralizedTime")

// DecodeOID returns the dotted-decimal form of an OBJECT IDENTIFIER node.
func DecodeOID(n Node) (string, error) {
	if n.Tag != TagOID || n.Constructed {
		return "", ErrBadOID
	}
	var oid encoding_asn1.ObjectIdentifier
	s := cryptobyte.String(n.Raw)
	if !s.ReadASN1ObjectIdentifier(&oid) {
		return "", ErrBadOID
	}
	return oid.String(), nil
}

// ParseTime returns Unix seconds of an UTCTime or GeneralizedTime node.
// UTCTime years below 50 are 20xx [rfc5280:4.1.2.5.1].
func ParseTime(n Node) (int64, error) {
	var t time.Time
	s := cryptobyte.String(n.Raw)
	switch n.Tag {
	case TagUTCTime:
		if !s.ReadASN1UTCTime(&t) {
			return 0, ErrBadTime
		}
	case TagGeneralizedTime:
		if !s.ReadASN1GeneralizedTime(&t) {
			return 0, ErrBadTime
		}
	default:
		return 0, ErrUnsupportedTimeTag
	}
	return t.Unix(), nil
}
