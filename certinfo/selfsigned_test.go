// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package certinfo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrissan/dtlscerts/certinfo"
)

func TestLooksSelfSigned(t *testing.T) {
	for _, v := range []struct {
		name     string
		issuer   certinfo.NameAttributes
		subject  certinfo.NameAttributes
		isCA     bool
		expected bool
	}{
		{"same cn", certinfo.NameAttributes{CommonName: names("x")}, certinfo.NameAttributes{CommonName: names("x")}, false, true},
		{"same cn and org", certinfo.NameAttributes{CommonName: names("x"), OrganizationName: names("O")}, certinfo.NameAttributes{CommonName: names("x"), OrganizationName: names("O")}, false, true},
		{"ou ignored", certinfo.NameAttributes{CommonName: names("x"), OrganizationalUnitName: names("1")}, certinfo.NameAttributes{CommonName: names("x")}, false, true},
		{"ca", certinfo.NameAttributes{CommonName: names("x")}, certinfo.NameAttributes{CommonName: names("x")}, true, false},
		{"different cn", certinfo.NameAttributes{CommonName: names("x")}, certinfo.NameAttributes{CommonName: names("y")}, false, false},
		{"different org", certinfo.NameAttributes{CommonName: names("x"), OrganizationName: names("O")}, certinfo.NameAttributes{CommonName: names("x"), OrganizationName: names("P")}, false, false},
		{"org on one side", certinfo.NameAttributes{CommonName: names("x"), OrganizationName: names("O")}, certinfo.NameAttributes{CommonName: names("x")}, false, false},
		{"two orgs", certinfo.NameAttributes{CommonName: names("x"), OrganizationName: names("O", "O")}, certinfo.NameAttributes{CommonName: names("x"), OrganizationName: names("O", "O")}, false, false},
		{"two cns", certinfo.NameAttributes{CommonName: names("x", "x")}, certinfo.NameAttributes{CommonName: names("x", "x")}, false, false},
		{"no cn", certinfo.NameAttributes{}, certinfo.NameAttributes{}, false, false},
	} {
		t.Run(v.name, func(t *testing.T) {
			ci := &certinfo.CertificateInfo{Issuer: v.issuer, Subject: v.subject, IsCA: v.isCA}
			require.Equal(t, v.expected, certinfo.LooksSelfSigned(ci))
		})
	}
}
