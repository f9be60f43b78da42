// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package capture

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/hrissan/dtlscerts/constants"
)

func OpenUDP(addressPort string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addressPort)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve local udp address %s: %w", addressPort, err)
	}
	socket, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("cannot listen to udp address %s: %w", addressPort, err)
	}
	return socket, nil
}

// ListenUDP feeds datagrams arriving at socket to e, as if captured on the
// way to the local address. Blocks until ctx is done, then closes socket.
// e must not be used by anybody else until ListenUDP returns.
func (e *Engine) ListenUDP(ctx context.Context, socket *net.UDPConn) error {
	stop := context.AfterFunc(ctx, func() {
		_ = socket.Close() // so blocked read returns
	})
	defer stop()
	var local netip.AddrPort
	if addr, ok := socket.LocalAddr().(*net.UDPAddr); ok {
		local = addr.AddrPort()
	}
	datagram := make([]byte, constants.MaxDatagramLength)
	for {
		n, addr, err := socket.ReadFromUDPAddrPort(datagram)
		if n != 0 { // do not check for an error here
			addr = netip.AddrPortFrom(addr.Addr().Unmap(), addr.Port())
			e.opts.Stats.SocketReadDatagram(datagram[:n], addr)
			e.HandleUDP(addr, local, datagram[:n], time.Now())
		}
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			e.opts.Stats.SocketReadError(n, addr, err)
			time.Sleep(e.opts.ReadErrorDelay)
		}
	}
}
