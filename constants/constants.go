// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package constants

// Nesting of ASN.1 structures we follow while walking names and extensions.
// Real certificates need less than 10, deeper input is rejected instead of
// being followed down the call stack.
const MaxASN1Depth = 32

// Largest UDP payload we ever read
const MaxDatagramLength = 65536

// Classifier requires at least this much of the first datagram
const MinClassifyDatagramLength = 100

const SelfSignedTag = "cert:self-signed"
const ProtocolDTLS = "dtls"
const ProtocolTLS = "tls"
