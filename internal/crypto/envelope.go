// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"encoding/base64"
	"fmt"
)

// Bytes returns the binary framing nonce ‖ ciphertext used for content blobs.
func (e Envelope) Bytes() []byte {
	out := make([]byte, 0, NonceSize+len(e.Ciphertext))
	out = append(out, e.Nonce[:]...)
	return append(out, e.Ciphertext...)
}

// Encode returns the transport form of e: standard base64 (with padding) of
// nonce ‖ ciphertext. It is the only textual encoding the client emits or
// accepts.
func (e Envelope) Encode() string {
	return base64.StdEncoding.EncodeToString(e.Bytes())
}

// EnvelopeFromBytes splits b into nonce and ciphertext. It fails with
// [ErrFormat] when b is shorter than a nonce. Lengths between the nonce size
// and nonce+tag are accepted here and rejected by [Open].
func EnvelopeFromBytes(b []byte) (Envelope, error) {
	if len(b) < NonceSize {
		return Envelope{}, opError("decode", fmt.Errorf("%w: %d bytes is shorter than the %d-byte nonce", ErrFormat, len(b), NonceSize))
	}

	var env Envelope
	copy(env.Nonce[:], b[:NonceSize])
	env.Ciphertext = append([]byte(nil), b[NonceSize:]...)
	return env, nil
}

// DecodeEnvelope parses the output of [Envelope.Encode].
func DecodeEnvelope(s string) (Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Envelope{}, opError("decode", fmt.Errorf("%w: %v", ErrFormat, err))
	}
	return EnvelopeFromBytes(raw)
}

// EncodeBytes and DecodeBytes are the base64 helpers for non-envelope byte
// fields (salts, public keys, challenges).
func EncodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeBytes(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, opError("decode", fmt.Errorf("%w: %v", ErrFormat, err))
	}
	return raw, nil
}
