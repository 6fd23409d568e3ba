// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"sync"
	"testing"
)

func TestContentHash_KnownVector(t *testing.T) {
	// sha256("abc")
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := ContentHash([]byte("abc")); got != want {
		t.Errorf("ContentHash(abc) = %s, want %s", got, want)
	}
}

func TestHash_ConcurrentUseIsConsistent(t *testing.T) {
	want := ContentHash([]byte("payload"))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := ContentHash([]byte("payload")); got != want {
				t.Errorf("got %s, want %s", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestIsUUID(t *testing.T) {
	if !IsUUID(NewUUIDGenerator().Generate()) {
		t.Error("generated id is not a UUID")
	}
	if IsUUID("file-1") {
		t.Error("file-1 accepted as UUID")
	}
}
