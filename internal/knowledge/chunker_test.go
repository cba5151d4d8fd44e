package knowledge

import (
	"strings"
	"testing"
)

func TestSplitText_ShortContentSingleChunk(t *testing.T) {
	chunks := SplitText("short profile text", 800, 150)
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0] != "short profile text" {
		t.Errorf("chunk = %q, want original text", chunks[0])
	}
}

func TestSplitText_Empty(t *testing.T) {
	if got := SplitText("", 800, 150); got != nil {
		t.Errorf("SplitText(empty) = %v, want nil", got)
	}
	if got := SplitText("   \n\t  ", 800, 150); len(got) != 0 {
		t.Errorf("SplitText(whitespace) = %v, want no chunks", got)
	}
}

func TestSplitText_WindowAndOverlap(t *testing.T) {
	content := strings.Repeat("a", 100)
	chunks := SplitText(content, 40, 10)

	// step = 30: windows start at 0, 30, 60, 90.
	if len(chunks) != 4 {
		t.Fatalf("len(chunks) = %d, want 4", len(chunks))
	}
	for i, c := range chunks[:3] {
		if len(c) != 40 {
			t.Errorf("chunk %d length = %d, want 40", i, len(c))
		}
	}
	if len(chunks[3]) != 10 {
		t.Errorf("last chunk length = %d, want 10", len(chunks[3]))
	}
}

func TestSplitText_OverlapPreservesBoundaryText(t *testing.T) {
	content := strings.Repeat("x", 35) + "BOUNDARY" + strings.Repeat("y", 35)
	chunks := SplitText(content, 40, 15)

	hits := 0
	for _, c := range chunks {
		if strings.Contains(c, "BOUND") {
			hits++
		}
	}
	if hits < 2 {
		t.Errorf("boundary text appears in %d chunks, want at least 2 (overlap)", hits)
	}
}

func TestSplitText_ClampsOverlap(t *testing.T) {
	// overlap >= size must still terminate and advance.
	content := strings.Repeat("z", 50)
	chunks := SplitText(content, 10, 10)
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	joined := strings.Join(chunks, "")
	if !strings.HasSuffix(joined, "z") || len(joined) < 50 {
		t.Errorf("chunks do not cover content: total %d runes", len(joined))
	}
}

func TestSplitText_CoversAllContent(t *testing.T) {
	content := "The quick brown fox jumps over the lazy dog. " +
		strings.Repeat("Relevant experience in distributed systems. ", 30)
	chunks := SplitText(content, 200, 50)

	for _, word := range []string{"quick", "lazy", "distributed"} {
		found := false
		for _, c := range chunks {
			if strings.Contains(c, word) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("word %q missing from all chunks", word)
		}
	}
}

func TestChunksFromSections(t *testing.T) {
	sections := []string{
		"## Experience\nBackend engineer.",
		strings.Repeat("long section ", 100), // forces windowing
		"## Education\nComputer science.",
	}
	chunks := ChunksFromSections(sections, 200, 50)

	if len(chunks) < 4 {
		t.Fatalf("len(chunks) = %d, want at least 4 (middle section must split)", len(chunks))
	}
	for i, c := range chunks {
		if c.ID != i {
			t.Errorf("chunk %d has ID %d, want sequential IDs", i, c.ID)
		}
		if c.Text == "" {
			t.Errorf("chunk %d has empty text", i)
		}
	}
	if !strings.Contains(chunks[0].Text, "Experience") {
		t.Errorf("first chunk = %q, want first section content", chunks[0].Text)
	}
	last := chunks[len(chunks)-1]
	if !strings.Contains(last.Text, "Education") {
		t.Errorf("last chunk = %q, want last section content", last.Text)
	}
}

func TestChunksFromSections_SkipsEmptySections(t *testing.T) {
	chunks := ChunksFromSections([]string{"", "  ", "real content"}, 800, 150)
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0].ID != 0 || chunks[0].Text != "real content" {
		t.Errorf("chunk = %+v, want {0 real content}", chunks[0])
	}
}
