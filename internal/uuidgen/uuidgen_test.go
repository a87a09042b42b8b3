package uuidgen_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"dcpkit/internal/services"
	"dcpkit/internal/uuidgen"
)

func TestNewSetsVersionAndVariant(t *testing.T) {
	for i := 0; i < 256; i++ {
		id, err := uuidgen.New()
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		if id[6]&0xf0 != 0x40 {
			t.Fatalf("byte 6 = %#x, want version nibble 0100", id[6])
		}
		if id[8]&0xc0 != 0x80 {
			t.Fatalf("byte 8 = %#x, want variant bits 10", id[8])
		}
	}
}

func TestNewForcesBitsOverDeterministicSource(t *testing.T) {
	restore := uuidgen.SetSource(bytes.NewReader(bytes.Repeat([]byte{0xff}, 16)))
	defer restore()

	id, err := uuidgen.New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if got := id.String(); got != "ffffffff-ffff-4fff-bfff-ffffffffffff" {
		t.Fatalf("unexpected id %s", got)
	}
}

func TestNewReportsExhaustedSource(t *testing.T) {
	restore := uuidgen.SetSource(bytes.NewReader([]byte{1, 2, 3}))
	defer restore()

	if _, err := uuidgen.New(); err == nil || !errors.Is(err, services.ErrEncoding) {
		t.Fatalf("expected encoding error from short source, got %v", err)
	}
}

func TestTextualForm(t *testing.T) {
	id := uuidgen.Must()
	text := id.String()
	if len(text) != 36 {
		t.Fatalf("unexpected length %d", len(text))
	}
	if text != strings.ToLower(text) {
		t.Fatalf("expected lowercase, got %s", text)
	}
	for _, pos := range []int{8, 13, 18, 23} {
		if text[pos] != '-' {
			t.Fatalf("expected hyphen at %d in %s", pos, text)
		}
	}
	parsed, err := uuidgen.Parse(uuidgen.URN(id))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if parsed != id {
		t.Fatalf("parse mismatch: %s != %s", parsed, id)
	}
	if _, err := uuidgen.Parse("not-a-uuid"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConcurrentGenerationIsUnique(t *testing.T) {
	const workers, perWorker = 8, 64
	var (
		mu   sync.Mutex
		seen = make(map[uuidgen.UUID]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := uuidgen.Must()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d unique ids, got %d", workers*perWorker, len(seen))
	}
}
