// Package ingest loads the profile document that backs the knowledge base
// and splits it into sections along markdown headings.
package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/fprada/ferbot/internal/knowledge"
)

// Profile is the loaded knowledge document.
type Profile struct {
	Raw      string
	Sections []string
}

// Load reads the profile document at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	raw := string(data)
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("profile %s is empty", path)
	}
	return &Profile{Raw: raw, Sections: splitSections(raw)}, nil
}

// splitSections divides markdown content at heading lines. A heading starts
// a new section and stays attached to its body. Content before the first
// heading forms its own section.
func splitSections(content string) []string {
	var sections []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sections = append(sections, s)
		}
		current.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			flush()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()
	return sections
}

// Chunks converts the profile into knowledge chunks. Documents with more
// than one section chunk per section, so headings stay with their content;
// a single-section document falls back to plain windowing.
func (p *Profile) Chunks(size, overlap int) []knowledge.Chunk {
	if len(p.Sections) > 1 {
		return knowledge.ChunksFromSections(p.Sections, size, overlap)
	}
	var chunks []knowledge.Chunk
	for i, text := range knowledge.SplitText(p.Raw, size, overlap) {
		chunks = append(chunks, knowledge.Chunk{ID: i, Text: text})
	}
	return chunks
}
