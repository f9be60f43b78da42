// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

// Package session keeps what parsers learn about one captured flow.
package session

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Session is owned by the goroutine processing its flow, there is no locking.
type Session struct {
	ID        uuid.UUID
	Flow      string // "src -> dst" of the first packet
	FirstSeen time.Time
	LastSeen  time.Time

	Protocols []string
	Tags      []string

	Certificates CertStore
}

func New(flow string, ts time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Flow:      flow,
		FirstSeen: ts,
		LastSeen:  ts,
	}
}

// Touch extends the session to a packet at ts.
func (s *Session) Touch(ts time.Time) {
	if ts.After(s.LastSeen) {
		s.LastSeen = ts
	}
}

// AddTag returns false if the tag was already present.
func (s *Session) AddTag(tag string) bool {
	if slices.Contains(s.Tags, tag) {
		return false
	}
	s.Tags = append(s.Tags, tag)
	return true
}

func (s *Session) HasTag(tag string) bool {
	return slices.Contains(s.Tags, tag)
}

// AddProtocol returns false if the protocol was already present.
func (s *Session) AddProtocol(protocol string) bool {
	if slices.Contains(s.Protocols, protocol) {
		return false
	}
	s.Protocols = append(s.Protocols, protocol)
	return true
}

func (s *Session) HasProtocol(protocol string) bool {
	return slices.Contains(s.Protocols, protocol)
}

func (s *Session) HasCertificates() bool {
	return s.Certificates.Len() != 0
}
