// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package dtlstest

import (
	"fmt"
	"io"
	"net"
	"net/netip"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Packet is one captured UDP datagram or TCP segment.
type Packet struct {
	Timestamp time.Time
	Src       netip.AddrPort
	Dst       netip.AddrPort
	TCP       bool
	Payload   []byte
}

// WritePcap writes packets as an Ethernet pcap file, IPv4 or IPv6 by the addresses.
func WritePcap(w io.Writer, packets ...Packet) error {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		return fmt.Errorf("writing pcap header: %w", err)
	}
	for i, p := range packets {
		data, err := serializePacket(p)
		if err != nil {
			return fmt.Errorf("serializing packet %d: %w", i, err)
		}
		ci := gopacket.CaptureInfo{Timestamp: p.Timestamp, CaptureLength: len(data), Length: len(data)}
		if err := pw.WritePacket(ci, data); err != nil {
			return fmt.Errorf("writing packet %d: %w", i, err)
		}
	}
	return nil
}

func serializePacket(p Packet) ([]byte, error) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 0x01},
		DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 0x02},
		EthernetType: layers.EthernetTypeIPv4,
	}
	protocol := layers.IPProtocolUDP
	if p.TCP {
		protocol = layers.IPProtocolTCP
	}
	var ip interface {
		gopacket.NetworkLayer
		gopacket.SerializableLayer
	}
	if p.Src.Addr().Is4() {
		ip = &layers.IPv4{Version: 4, TTL: 64, Protocol: protocol, SrcIP: p.Src.Addr().AsSlice(), DstIP: p.Dst.Addr().AsSlice()}
	} else {
		eth.EthernetType = layers.EthernetTypeIPv6
		ip = &layers.IPv6{Version: 6, HopLimit: 64, NextHeader: protocol, SrcIP: p.Src.Addr().AsSlice(), DstIP: p.Dst.Addr().AsSlice()}
	}
	toSerialize := []gopacket.SerializableLayer{eth, ip}
	if p.TCP {
		tcp := &layers.TCP{SrcPort: layers.TCPPort(p.Src.Port()), DstPort: layers.TCPPort(p.Dst.Port()), Seq: 1, ACK: true, PSH: true, Window: 65535}
		if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
			return nil, err
		}
		toSerialize = append(toSerialize, tcp)
	} else {
		udp := &layers.UDP{SrcPort: layers.UDPPort(p.Src.Port()), DstPort: layers.UDPPort(p.Dst.Port())}
		if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
			return nil, err
		}
		toSerialize = append(toSerialize, udp)
	}
	toSerialize = append(toSerialize, gopacket.Payload(p.Payload))

	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}, toSerialize...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DTLSFlow is a client hello followed by a server flight with certs, as a
// capture of one DTLS handshake would show.
func DTLSFlow(client, server netip.AddrPort, start time.Time, certs ...[]byte) []Packet {
	return []Packet{
		{Timestamp: start, Src: client, Dst: server, Payload: ClientHelloDatagram()},
		{Timestamp: start.Add(10 * time.Millisecond), Src: server, Dst: client, Payload: Datagram(Record(1, CertificateMessage(certs...)))},
	}
}
