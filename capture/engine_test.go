// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package capture

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrissan/dtlscerts/certinfo"
	"github.com/hrissan/dtlscerts/constants"
	"github.com/hrissan/dtlscerts/dtlstest"
	"github.com/hrissan/dtlscerts/format"
	"github.com/hrissan/dtlscerts/options"
	"github.com/hrissan/dtlscerts/stats"
)

var (
	client = netip.MustParseAddrPort("192.0.2.10:40000")
	server = netip.MustParseAddrPort("192.0.2.1:5684")
	start  = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newEngine() (*Engine, *stats.Counters) {
	counters := &stats.Counters{}
	return NewEngine(options.Default(counters)), counters
}

func feed(e *Engine, packets []dtlstest.Packet) {
	for _, p := range packets {
		if p.TCP {
			e.HandleTCP(p.Src, p.Dst, p.Payload, p.Timestamp)
		} else {
			e.HandleUDP(p.Src, p.Dst, p.Payload, p.Timestamp)
		}
	}
}

func TestEngineDTLSFlow(t *testing.T) {
	e, counters := newEngine()
	der := dtlstest.MustCertificate(dtlstest.ExampleCom())
	feed(e, dtlstest.DTLSFlow(client, server, start, der))

	sessions := e.Sessions()
	require.Len(t, sessions, 1)
	sess := sessions[0]
	require.Equal(t, "192.0.2.10:40000 -> 192.0.2.1:5684", sess.Flow)
	require.Equal(t, []string{constants.ProtocolDTLS}, sess.Protocols)
	require.Equal(t, []string{constants.SelfSignedTag}, sess.Tags)
	require.Equal(t, start, sess.FirstSeen)
	require.Equal(t, start.Add(10*time.Millisecond), sess.LastSeen)
	require.Equal(t, 1, sess.Certificates.Len())
	require.Equal(t, []string{"www.example.com"}, sess.Certificates.All()[0].AltNames)
	require.Equal(t, uint64(1), counters.CertificatesDecoded.Load())
}

func TestEngineUnclassifiedFlowIgnored(t *testing.T) {
	e, counters := newEngine()
	der := dtlstest.MustCertificate(dtlstest.ExampleCom())
	certificates := dtlstest.Datagram(dtlstest.Record(1, dtlstest.CertificateMessage(der)))
	for i := 0; i < 3; i++ {
		e.HandleUDP(server, client, certificates, start)
	}
	// classification is not attempted any more
	e.HandleUDP(client, server, dtlstest.ClientHelloDatagram(), start)
	e.HandleUDP(server, client, certificates, start)

	require.Empty(t, e.Sessions())
	require.Zero(t, counters.CertificatesDecoded.Load())
}

func TestEngineParserUnregisters(t *testing.T) {
	e, counters := newEngine()
	der := dtlstest.MustCertificate(dtlstest.ExampleCom())
	e.HandleUDP(client, server, dtlstest.ClientHelloDatagram(), start)
	e.HandleUDP(server, client, []byte{23, 0xfe, 0xfd, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0xAA}, start) // application data
	e.HandleUDP(server, client, dtlstest.Datagram(dtlstest.Record(1, dtlstest.CertificateMessage(der))), start)

	require.Len(t, e.Sessions(), 1)
	require.Zero(t, e.Sessions()[0].Certificates.Len())
	require.Zero(t, counters.CertificatesDecoded.Load())
}

func TestEngineSeparateFlows(t *testing.T) {
	e, _ := newEngine()
	first := dtlstest.MustCertificate(dtlstest.ExampleCom())
	tmpl := dtlstest.ExampleCom()
	tmpl.Issuer = dtlstest.Name{dtlstest.CN("Other CA")}
	second := dtlstest.MustCertificate(tmpl)

	otherClient := netip.MustParseAddrPort("[2001:db8::10]:40001")
	otherServer := netip.MustParseAddrPort("[2001:db8::1]:5684")
	feed(e, dtlstest.DTLSFlow(client, server, start, first))
	feed(e, dtlstest.DTLSFlow(otherClient, otherServer, start.Add(time.Second), second))

	sessions := e.Sessions()
	require.Len(t, sessions, 2)
	require.NotEqual(t, sessions[0].ID, sessions[1].ID)
	require.True(t, sessions[0].HasTag(constants.SelfSignedTag))
	require.False(t, sessions[1].HasTag(constants.SelfSignedTag))
	require.Equal(t, []string{"other ca"}, certinfo.Values(sessions[1].Certificates.All()[0].Issuer.CommonName))
}

func TestEngineTLSFlow(t *testing.T) {
	e, _ := newEngine()
	der := dtlstest.MustCertificate(dtlstest.ExampleCom())
	tlsServer := netip.MustParseAddrPort("192.0.2.1:8443")
	feed(e, []dtlstest.Packet{
		{Timestamp: start, Src: client, Dst: tlsServer, TCP: true}, // SYN
		{Timestamp: start, Src: client, Dst: tlsServer, TCP: true, Payload: dtlstest.TLSRecord(dtlstest.Message{Type: format.HandshakeTypeClientHello, Body: make([]byte, 60)})},
		{Timestamp: start, Src: tlsServer, Dst: client, TCP: true, Payload: dtlstest.TLSRecord(dtlstest.CertificateMessage(der))},
	})
	sessions := e.Sessions()
	require.Len(t, sessions, 1)
	require.Equal(t, []string{constants.ProtocolTLS}, sessions[0].Protocols)
	require.Equal(t, 1, sessions[0].Certificates.Len())
}

func TestEngineFlowIdleTimeout(t *testing.T) {
	e, _ := newEngine()
	der := dtlstest.MustCertificate(dtlstest.ExampleCom())
	certificates := dtlstest.Datagram(dtlstest.Record(1, dtlstest.CertificateMessage(der)))
	noise := []byte{0x17, 0x01}
	other := netip.MustParseAddrPort("192.0.2.20:40000")

	feed(e, dtlstest.DTLSFlow(client, server, start, der))
	e.HandleUDP(other, server, noise, start)
	e.HandleUDP(other, server, noise, start)
	require.Len(t, e.flows, 2)

	// both flows idle for longer than the timeout are forgotten
	later := start.Add(e.opts.FlowIdleTimeout + time.Second)
	e.HandleUDP(other, server, dtlstest.ClientHelloDatagram(), later)
	require.Len(t, e.flows, 1)
	e.HandleUDP(server, other, certificates, later)

	sessions := e.Sessions()
	require.Len(t, sessions, 2) // expired session is still reported
	require.Equal(t, 1, sessions[0].Certificates.Len())
	require.Equal(t, "192.0.2.20:40000 -> 192.0.2.1:5684", sessions[1].Flow)
	require.Equal(t, 1, sessions[1].Certificates.Len())

	// a packet of an expired flow starts a new session
	feed(e, dtlstest.DTLSFlow(client, server, later, der))
	require.Len(t, e.Sessions(), 3)
	require.Len(t, e.flows, 2)
}

func TestEngineFlowsKeptWithoutTimeout(t *testing.T) {
	opts := options.Default(&stats.Counters{})
	opts.FlowIdleTimeout = 0
	e := NewEngine(opts)
	der := dtlstest.MustCertificate(dtlstest.ExampleCom())

	feed(e, dtlstest.DTLSFlow(client, server, start, der))
	feed(e, dtlstest.DTLSFlow(client, server, start.Add(24*time.Hour), der))
	require.Len(t, e.flows, 1)
	require.Len(t, e.Sessions(), 1)
	require.Equal(t, 1, e.Sessions()[0].Certificates.Len()) // duplicate dropped by the same session
}
