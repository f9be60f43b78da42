// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package session

import (
	"github.com/hrissan/dtlscerts/certinfo"
)

// CertStore is the certificate field of a session. Certificates are kept in
// the order they were first seen, duplicates by certinfo.Equal are refused.
//
// Zero value is ready to use.
type CertStore struct {
	list    []*certinfo.CertificateInfo
	buckets map[uint32][]int // certinfo.Hash -> indexes in list
}

// Add takes ownership of ci and returns true, or returns false if an equal
// certificate is already stored, ci is then left to the caller to drop.
func (cs *CertStore) Add(ci *certinfo.CertificateInfo) bool {
	h := certinfo.Hash(ci)
	for _, i := range cs.buckets[h] {
		if certinfo.Equal(cs.list[i], ci) {
			return false
		}
	}
	if cs.buckets == nil {
		cs.buckets = map[uint32][]int{}
	}
	cs.buckets[h] = append(cs.buckets[h], len(cs.list))
	cs.list = append(cs.list, ci)
	return true
}

func (cs *CertStore) Len() int { return len(cs.list) }

// All returns stored certificates in wire order, the slice must not be modified.
func (cs *CertStore) All() []*certinfo.CertificateInfo { return cs.list }
