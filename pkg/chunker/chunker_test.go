package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplitEmptyDocument(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"spaces only", "   "},
		{"whitespace mix", " \n\t \n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.text, 1000, 200)
			if err != ErrEmptyDocument {
				t.Errorf("Split(%q) err = %v, want ErrEmptyDocument", tt.text, err)
			}
		})
	}
}

func TestSplitShortDocument(t *testing.T) {
	text := "This contract is short."
	chunks, err := Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunk count = %d, want 1", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text = %q, want original text", chunks[0].Text)
	}
	if chunks[0].Index != 0 {
		t.Errorf("chunk index = %d, want 0", chunks[0].Index)
	}
}

func TestSplitChunkCount(t *testing.T) {
	// 3000 chars without natural boundaries, target 1000, overlap 200:
	// starts advance by 800 -> 0, 800, 1600, 2400 -> 4 chunks.
	text := strings.Repeat("a", 3000)
	chunks, err := Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("chunk count = %d, want 4", len(chunks))
	}
}

func TestSplitSizeBound(t *testing.T) {
	text := strings.Repeat("The employee shall perform duties as assigned. ", 200)
	targetSize := 1000
	chunks, err := Split(text, targetSize, 200)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	for i, c := range chunks {
		if len([]rune(c.Text)) > targetSize {
			t.Errorf("chunk %d length = %d, exceeds target %d", i, len([]rune(c.Text)), targetSize)
		}
		if i < len(chunks)-1 && len([]rune(c.Text)) < targetSize/2 {
			t.Errorf("chunk %d length = %d, below half target", i, len([]rune(c.Text)))
		}
	}
}

func TestSplitCoverage(t *testing.T) {
	// Unique numbered sentences so every chunk occurs exactly once in the source.
	var b strings.Builder
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&b, "Section %d covers salary, notice and leave entitlements. ", i)
	}
	text := b.String()

	chunks, err := Split(text, 800, 150)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}

	// Every chunk must appear verbatim in the source, and the chunks together
	// must cover the whole document: each chunk starts at or before the end of
	// the previous one thanks to the overlap.
	covered := 0
	for i, c := range chunks {
		chunkStart := strings.Index(text, c.Text)
		if chunkStart < 0 {
			t.Fatalf("chunk %d not found verbatim in source", i)
		}
		if chunkStart > covered {
			t.Fatalf("gap before chunk %d: starts at %d, coverage ended at %d", i, chunkStart, covered)
		}
		if end := chunkStart + len(c.Text); end > covered {
			covered = end
		}
	}
	if covered != len(text) {
		t.Errorf("coverage ends at %d, want %d", covered, len(text))
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	sentence := "The party of the first part agrees to the terms. "
	text := strings.Repeat(sentence, 60)
	chunks, err := Split(text, 500, 100)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	for i, c := range chunks[:len(chunks)-1] {
		trimmed := strings.TrimRight(c.Text, " \n")
		if !strings.HasSuffix(trimmed, ".") {
			t.Errorf("chunk %d does not end on a sentence boundary: %q", i, trimmed[len(trimmed)-20:])
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("Probation period of six months applies.\n\n", 80)
	a, err := Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	b, err := Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
