// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

// Package dtlsparser finds Certificate handshake messages in captured DTLS
// datagrams and TLS segments, and decodes certificates they carry.
//
// Captured traffic is trusted for nothing: every length is checked against
// what was captured, and framing problems end processing of the current
// datagram or record without affecting the session.
package dtlsparser

import (
	"github.com/hrissan/dtlscerts/certinfo"
	"github.com/hrissan/dtlscerts/constants"
	"github.com/hrissan/dtlscerts/format"
	"github.com/hrissan/dtlscerts/options"
	"github.com/hrissan/dtlscerts/session"
	"github.com/hrissan/dtlscerts/stats"
)

// Parser is stateless, one instance serves all sessions of an engine.
type Parser struct {
	opts *options.Options
}

func NewParser(opts *options.Options) *Parser {
	return &Parser{opts: withStats(opts)}
}

// withStats returns opts, or a copy reporting to nobody when Stats is not set.
func withStats(opts *options.Options) *options.Options {
	if opts.Stats != nil {
		return opts
	}
	quiet := *opts
	quiet.Stats = stats.Multi{}
	return &quiet
}

// ParseDatagram adds certificates found in datagram to sess.
// Returns false when the flow no longer carries DTLS handshake records,
// the caller should stop passing datagrams of this session then.
func (p *Parser) ParseDatagram(sess *session.Session, datagram []byte) bool {
	if len(datagram) == 0 {
		return true
	}
	if datagram[0] != format.PlaintextContentTypeHandshake {
		return false
	}
	walkDatagram(datagram, p.opts.Stats, sess.Flow, func(body []byte) {
		p.addCertificateList(sess, body)
	})
	return true
}

// ParseTLS is ParseDatagram for one TCP segment payload. Records and messages
// spanning segments are not reassembled.
func (p *Parser) ParseTLS(sess *session.Session, segment []byte) bool {
	if len(segment) == 0 {
		return true
	}
	if segment[0] != format.PlaintextContentTypeHandshake {
		return false
	}
	walkStream(segment, p.opts.Stats, sess.Flow, func(body []byte) {
		p.addCertificateList(sess, body)
	})
	return true
}

func (p *Parser) addCertificateList(sess *session.Session, body []byte) {
	decodeCertificateList(body, p.opts, sess.Flow, func(index int, ci *certinfo.CertificateInfo) {
		// only the first certificate of a session may look self-signed
		if !sess.HasCertificates() && certinfo.LooksSelfSigned(ci) && sess.AddTag(constants.SelfSignedTag) {
			p.opts.Stats.SelfSigned(ci, sess.Flow)
		}
		if !sess.Certificates.Add(ci) {
			p.opts.Stats.DuplicateCertificate(index, ci, sess.Flow)
			return
		}
		p.opts.Stats.CertificateDecoded(index, ci, sess.Flow)
	})
}

// TryDecodeCertificates returns all certificates decoded from one DTLS
// datagram in wire order, without deduplication or session state.
func TryDecodeCertificates(datagram []byte, opts *options.Options) []*certinfo.CertificateInfo {
	opts = withStats(opts)
	var result []*certinfo.CertificateInfo
	walkDatagram(datagram, opts.Stats, "", func(body []byte) {
		decodeCertificateList(body, opts, "", func(index int, ci *certinfo.CertificateInfo) {
			opts.Stats.CertificateDecoded(index, ci, "")
			result = append(result, ci)
		})
	})
	return result
}

func decodeCertificateList(body []byte, opts *options.Options, flow string, yield func(index int, ci *certinfo.CertificateInfo)) {
	var list format.CertificateList
	if err := list.Parse(body); err != nil {
		opts.Stats.BadMessageHeader("certificate", 0, len(body), flow, err)
		return
	}
	for index := 0; ; index++ {
		der, ok := list.Next()
		if !ok {
			return
		}
		ci, err := certinfo.Decode(der, opts.Decoder)
		if err != nil {
			opts.Stats.BadCertificate(index, der, flow, err)
			if opts.HaltOnBadCertificate {
				return
			}
			continue
		}
		yield(index, ci)
	}
}

// walkDatagram calls onCertificates with the body of every complete,
// unfragmented Certificate message.
func walkDatagram(datagram []byte, st stats.Stats, flow string, onCertificates func(body []byte)) {
	recordOffset := 0 // Multiple DTLS records MAY be placed in a single datagram [rfc6347:4.1.1]
	for len(datagram)-recordOffset >= format.PlaintextRecordHeaderSize {
		// content type, version and epoch are not looked at, encrypted records
		// simply contain nothing that parses as a certificate
		var hdr format.PlaintextRecordHeader
		n, record, err := hdr.Parse(datagram[recordOffset:])
		if err != nil {
			st.BadRecord(constants.ProtocolDTLS, recordOffset, len(datagram), flow, err)
			return
		}
		recordOffset += n
		walkRecord(record, st, flow, onCertificates) // errors inside do not prevent processing of the next record
	}
}

func walkRecord(record []byte, st stats.Stats, flow string, onCertificates func(body []byte)) {
	messageOffset := 0
	for len(record)-messageOffset > format.MessageHandshakeHeaderSize {
		var hdr format.MessageHandshakeHeader
		offset, err := hdr.Parse(record, messageOffset)
		if err != nil { // never, checked by the loop condition
			st.BadMessageHeader(constants.ProtocolDTLS, messageOffset, len(record), flow, err)
			return
		}
		if hdr.FragmentOffset != 0 {
			// we do not reassemble fragments
			st.FragmentSkipped(hdr, flow)
			if messageOffset, err = format.ParserSkip(record, offset, int(hdr.Length)); err != nil {
				return
			}
			continue
		}
		if int(hdr.Length) > len(record)-offset {
			st.BadMessageHeader(constants.ProtocolDTLS, messageOffset, len(record), flow, format.ErrMessageBodyTooShort)
			return
		}
		body := record[offset : offset+int(hdr.Length)]
		messageOffset = offset + int(hdr.Length)
		if hdr.HandshakeType == format.HandshakeTypeCertificate {
			onCertificates(body)
		}
	}
}

// walkStream is walkDatagram for TLS records of one segment.
func walkStream(segment []byte, st stats.Stats, flow string, onCertificates func(body []byte)) {
	recordOffset := 0
	for len(segment)-recordOffset >= format.TLSRecordHeaderSize {
		var hdr format.TLSRecordHeader
		n, record, err := hdr.Parse(segment[recordOffset:])
		if err != nil {
			st.BadRecord(constants.ProtocolTLS, recordOffset, len(segment), flow, err)
			return
		}
		recordOffset += n
		if hdr.ContentType != format.PlaintextContentTypeHandshake {
			continue // change_cipher_spec, alerts, application data
		}
		messageOffset := 0
		for len(record)-messageOffset >= format.TLSHandshakeHeaderSize {
			var msgHdr format.TLSHandshakeHeader
			offset, err := msgHdr.Parse(record, messageOffset)
			if err != nil { // never, checked by the loop condition
				break
			}
			if int(msgHdr.Length) > len(record)-offset {
				st.BadMessageHeader(constants.ProtocolTLS, messageOffset, len(record), flow, format.ErrMessageBodyTooShort)
				break
			}
			body := record[offset : offset+int(msgHdr.Length)]
			messageOffset = offset + int(msgHdr.Length)
			if msgHdr.HandshakeType == format.HandshakeTypeCertificate {
				onCertificates(body)
			}
		}
	}
}
