// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package capture

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/hrissan/dtlscerts/options"
	"github.com/hrissan/dtlscerts/session"
)

// section header block type, same in both byte orders
const pcapngMagic = 0x0A0D0D0A

type packetReader interface {
	ReadPacketData() (data []byte, ci gopacket.CaptureInfo, err error)
	LinkType() layers.LinkType
}

func newPacketReader(r io.Reader) (packetReader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("reading capture file header: %w", err)
	}
	if binary.BigEndian.Uint32(magic) == pcapngMagic {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

// ReadPcap feeds every packet of a pcap or pcapng stream to e. A capture cut
// in the middle of a packet ends without error, as live captures often are.
func (e *Engine) ReadPcap(ctx context.Context, r io.Reader) error {
	source, err := newPacketReader(r)
	if err != nil {
		return err
	}
	linkType := source.LinkType()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, ci, err := source.ReadPacketData()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading packet: %w", err)
		}
		packet := gopacket.NewPacket(data, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		e.HandlePacket(packet, ci.Timestamp)
	}
}

// HandlePacket dispatches UDP and TCP payloads of an IPv4 or IPv6 packet.
func (e *Engine) HandlePacket(packet gopacket.Packet, ts time.Time) {
	var src, dst netip.Addr
	switch ip := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		src, _ = netip.AddrFromSlice(ip.SrcIP.To4())
		dst, _ = netip.AddrFromSlice(ip.DstIP.To4())
	case *layers.IPv6:
		src, _ = netip.AddrFromSlice(ip.SrcIP)
		dst, _ = netip.AddrFromSlice(ip.DstIP)
	default:
		return
	}
	switch transport := packet.TransportLayer().(type) {
	case *layers.UDP:
		e.HandleUDP(netip.AddrPortFrom(src, uint16(transport.SrcPort)), netip.AddrPortFrom(dst, uint16(transport.DstPort)), transport.Payload, ts)
	case *layers.TCP:
		e.HandleTCP(netip.AddrPortFrom(src, uint16(transport.SrcPort)), netip.AddrPortFrom(dst, uint16(transport.DstPort)), transport.Payload, ts)
	}
}

// ProcessFile returns classified sessions of one capture file.
func ProcessFile(ctx context.Context, path string, opts *options.Options) ([]*session.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	defer f.Close()
	e := NewEngine(opts)
	if err := e.ReadPcap(ctx, f); err != nil {
		return e.Sessions(), fmt.Errorf("%s: %w", path, err)
	}
	return e.Sessions(), nil
}
