// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

// Package output writes decoded sessions as JSON lines, YAML documents,
// a CBOR sequence or a text table.
package output

import (
	"time"

	"github.com/hrissan/dtlscerts/certinfo"
	"github.com/hrissan/dtlscerts/session"
)

// SessionDocument uses session database field names, certificates are under "cert".
type SessionDocument struct {
	ID          string              `json:"id" yaml:"id"`
	Flow        string              `json:"flow" yaml:"flow"`
	FirstPacket int64               `json:"firstPacket" yaml:"firstPacket"` // milliseconds
	LastPacket  int64               `json:"lastPacket" yaml:"lastPacket"`   // milliseconds
	Protocols   []string            `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Tags        []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	CertCnt     int                 `json:"certCnt" yaml:"certCnt"`
	Cert        []certinfo.Document `json:"cert,omitempty" yaml:"cert,omitempty"`
}

// NewSessionDocument computes remaining validity against reference, or
// against the last packet of the session when reference is zero.
func NewSessionDocument(sess *session.Session, reference time.Time) SessionDocument {
	if reference.IsZero() {
		reference = sess.LastSeen
	}
	doc := SessionDocument{
		ID:          sess.ID.String(),
		Flow:        sess.Flow,
		FirstPacket: sess.FirstSeen.UnixMilli(),
		LastPacket:  sess.LastSeen.UnixMilli(),
		Protocols:   sess.Protocols,
		Tags:        sess.Tags,
		CertCnt:     sess.Certificates.Len(),
	}
	for _, ci := range sess.Certificates.All() {
		doc.Cert = append(doc.Cert, certinfo.NewDocument(ci, reference))
	}
	return doc
}

func NewSessionDocuments(sessions []*session.Session, reference time.Time) []SessionDocument {
	docs := make([]SessionDocument, 0, len(sessions))
	for _, sess := range sessions {
		docs = append(docs, NewSessionDocument(sess, reference))
	}
	return docs
}
