// Package history exports and searches the backend's conversation memory.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/neuroai/neurochat/internal/models"
)

// ExportFormat represents the format for exporting a transcript
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseFormat accepts "md", "markdown" or "json"
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use md or json)", s)
	}
}

// Transcript is a snapshot of the backend memory
type Transcript struct {
	Source     string           `json:"source"`
	ExportedAt time.Time        `json:"exported_at"`
	Messages   []models.Message `json:"messages"`
}

// NewTranscript snapshots msgs, dropping local info lines
func NewTranscript(source string, msgs []models.Message) Transcript {
	kept := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == models.RoleInfo {
			continue
		}
		kept = append(kept, m)
	}
	return Transcript{
		Source:     source,
		ExportedAt: time.Now().UTC(),
		Messages:   kept,
	}
}

// Markdown renders the transcript as a markdown document
func (t Transcript) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# Neuro conversation\n\n")
	fmt.Fprintf(&sb, "**Backend:** %s\n", t.Source)
	fmt.Fprintf(&sb, "**Exported:** %s\n", t.ExportedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "**Messages:** %d\n\n---\n\n", len(t.Messages))

	for i, msg := range t.Messages {
		sb.WriteString("## ")
		sb.WriteString(msg.Label())
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(t.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// JSON renders the transcript as indented JSON
func (t Transcript) JSON() ([]byte, error) {
	if t.Messages == nil {
		t.Messages = []models.Message{}
	}
	return json.MarshalIndent(t, "", "  ")
}

// Export renders the transcript in the given format
func (t Transcript) Export(format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatMarkdown:
		return []byte(t.Markdown()), nil
	case ExportFormatJSON:
		return t.JSON()
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// Match is one search hit in a transcript
type Match struct {
	Index   int
	Role    models.Role
	Snippet string
}

// Search finds messages containing query, case-insensitively
func Search(msgs []models.Message, query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	queryLower := strings.ToLower(query)
	var matches []Match
	for i, msg := range msgs {
		if strings.Contains(strings.ToLower(msg.Content), queryLower) {
			matches = append(matches, Match{
				Index:   i,
				Role:    msg.Role,
				Snippet: extractSnippet(msg.Content, query, 80),
			})
		}
	}
	return matches
}

// extractSnippet cuts maxLen runes around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}

	lower := []rune(strings.ToLower(content))
	idx := runeIndex(lower, []rune(strings.ToLower(query)))
	if idx < 0 {
		return string(runes[:maxLen]) + "..."
	}

	start := idx - maxLen/2
	if start < 0 {
		start = 0
	}
	end := start + maxLen
	if end > len(runes) {
		end = len(runes)
		start = max(0, end-maxLen)
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
