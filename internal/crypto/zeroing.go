// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "crypto/subtle"

// Wipe overwrites every given buffer with zeros. Go's garbage collector may
// have copied the bytes elsewhere, so this narrows the window during which a
// key is readable from memory rather than closing it.
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
	}
}

// IsZero reports whether b holds only zero bytes.
func IsZero(b []byte) bool {
	var acc byte
	for _, v := range b {
		acc |= v
	}
	return acc == 0
}
