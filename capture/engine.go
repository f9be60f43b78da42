// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

// Package capture turns packets into sessions: flows are tracked by their
// endpoints, classified on the first packets, and payloads of classified
// flows are passed to the certificate parser.
package capture

import (
	"net/netip"
	"time"

	"github.com/hrissan/dtlscerts/constants"
	"github.com/hrissan/dtlscerts/dtlsparser"
	"github.com/hrissan/dtlscerts/options"
	"github.com/hrissan/dtlscerts/session"
)

// packets of a flow (roughly one in each direction) offered to classifiers
const classifyAttempts = 2

const (
	transportUDP = 17
	transportTCP = 6
)

// endpoints are ordered, so both directions map to the same flow
type flowKey struct {
	transport byte
	a, b      netip.AddrPort
}

func makeFlowKey(transport byte, src, dst netip.AddrPort) flowKey {
	if src.Compare(dst) > 0 {
		src, dst = dst, src
	}
	return flowKey{transport: transport, a: src, b: dst}
}

type flowState struct {
	sess       *session.Session
	attempts   int
	registered bool // classified, payloads go to the parser
	done       bool // parser unregistered itself
}

// Engine is owned by one goroutine.
type Engine struct {
	opts       *options.Options
	parser     *dtlsparser.Parser
	flows      map[flowKey]*flowState
	lastExpire time.Time
	sessions   []*session.Session // classified, in order of first packet
}

func NewEngine(opts *options.Options) *Engine {
	return &Engine{
		opts:   opts,
		parser: dtlsparser.NewParser(opts),
		flows:  map[flowKey]*flowState{},
	}
}

func (e *Engine) flow(transport byte, src, dst netip.AddrPort, ts time.Time) *flowState {
	e.expire(ts)
	key := makeFlowKey(transport, src, dst)
	f, ok := e.flows[key]
	if !ok {
		f = &flowState{sess: session.New(src.String()+" -> "+dst.String(), ts)}
		e.flows[key] = f
	}
	f.sess.Touch(ts)
	return f
}

// expire forgets flows idle for longer than opts.FlowIdleTimeout, at most
// once per timeout. Classified sessions stay in Sessions.
func (e *Engine) expire(now time.Time) {
	timeout := e.opts.FlowIdleTimeout
	if timeout <= 0 || now.Sub(e.lastExpire) < timeout {
		return
	}
	e.lastExpire = now
	for key, f := range e.flows {
		if now.Sub(f.sess.LastSeen) > timeout {
			delete(e.flows, key)
		}
	}
}

// HandleUDP processes one datagram.
func (e *Engine) HandleUDP(src, dst netip.AddrPort, payload []byte, ts time.Time) {
	f := e.flow(transportUDP, src, dst, ts)
	if f.done {
		return
	}
	if !f.registered {
		if f.attempts >= classifyAttempts {
			return
		}
		f.attempts++
		if !dtlsparser.Classify(payload) {
			return
		}
		e.register(f, constants.ProtocolDTLS)
	}
	if !e.parser.ParseDatagram(f.sess, payload) {
		f.done = true
	}
}

// HandleTCP processes the payload of one segment. Streams are not
// reassembled, a certificate message must fit into one segment.
func (e *Engine) HandleTCP(src, dst netip.AddrPort, payload []byte, ts time.Time) {
	f := e.flow(transportTCP, src, dst, ts)
	if f.done || len(payload) == 0 { // handshake and bare ACK segments are not classification attempts
		return
	}
	if !f.registered {
		if f.attempts >= classifyAttempts {
			return
		}
		f.attempts++
		if !dtlsparser.ClassifyTLS(payload) {
			return
		}
		e.register(f, constants.ProtocolTLS)
	}
	if !e.parser.ParseTLS(f.sess, payload) {
		f.done = true
	}
}

func (e *Engine) register(f *flowState, protocol string) {
	f.registered = true
	f.sess.AddProtocol(protocol)
	e.sessions = append(e.sessions, f.sess)
}

// Sessions returns classified sessions in order of their first packet.
func (e *Engine) Sessions() []*session.Session {
	return e.sessions
}
