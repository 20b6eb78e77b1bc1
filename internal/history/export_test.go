package history

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/neuroai/neurochat/internal/models"
)

func sampleMessages() []models.Message {
	return []models.Message{
		{Role: models.RoleUser, Content: "Hello, how are you?"},
		{Role: models.RoleAssistant, Content: "I'm doing well, thank you!"},
		{Role: models.RoleInfo, Content: "Switched to Gemini API"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"md", ExportFormatMarkdown, false},
		{"Markdown", ExportFormatMarkdown, false},
		{" json ", ExportFormatJSON, false},
		{"yaml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewTranscript_DropsInfo(t *testing.T) {
	tr := NewTranscript("http://127.0.0.1:5000", sampleMessages())

	if len(tr.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(tr.Messages))
	}
	for _, m := range tr.Messages {
		if m.Role == models.RoleInfo {
			t.Error("info lines should not be exported")
		}
	}
	if tr.ExportedAt.IsZero() {
		t.Error("expected export time to be set")
	}
}

func TestTranscript_Markdown(t *testing.T) {
	md := NewTranscript("http://127.0.0.1:5000", sampleMessages()).Markdown()

	for _, want := range []string{
		"# Neuro conversation",
		"**Backend:** http://127.0.0.1:5000",
		"**Messages:** 2",
		"## You",
		"## Neuro",
		"Hello, how are you?",
		"I'm doing well",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "Switched to Gemini") {
		t.Error("markdown should not contain info lines")
	}
	if strings.Index(md, "## You") > strings.Index(md, "## Neuro") {
		t.Error("messages should keep their order")
	}
}

func TestTranscript_JSON(t *testing.T) {
	data, err := NewTranscript("src", sampleMessages()).JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var decoded struct {
		Source   string `json:"source"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Source != "src" {
		t.Errorf("expected source 'src', got %q", decoded.Source)
	}
	if len(decoded.Messages) != 2 || decoded.Messages[0].Role != "user" || decoded.Messages[1].Role != "assistant" {
		t.Errorf("unexpected messages: %+v", decoded.Messages)
	}
}

func TestTranscript_JSONEmpty(t *testing.T) {
	data, err := Transcript{Source: "src"}.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if !strings.Contains(string(data), `"messages": []`) {
		t.Errorf("expected empty array, got %s", data)
	}
}

func TestTranscript_Export(t *testing.T) {
	tr := NewTranscript("src", sampleMessages())

	md, err := tr.Export(ExportFormatMarkdown)
	if err != nil || !strings.HasPrefix(string(md), "# Neuro conversation") {
		t.Errorf("markdown export: %v %q", err, md)
	}

	js, err := tr.Export(ExportFormatJSON)
	if err != nil || !json.Valid(js) {
		t.Errorf("json export: %v %q", err, js)
	}

	if _, err := tr.Export("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSearch(t *testing.T) {
	msgs := sampleMessages()

	matches := Search(msgs, "WELL")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Index != 1 || matches[0].Role != models.RoleAssistant {
		t.Errorf("unexpected match: %+v", matches[0])
	}

	if got := Search(msgs, "   "); got != nil {
		t.Errorf("blank query should match nothing, got %v", got)
	}
	if got := Search(msgs, "absent"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestExtractSnippet(t *testing.T) {
	short := "short text"
	if got := extractSnippet(short, "text", 80); got != short {
		t.Errorf("short content should be returned whole, got %q", got)
	}

	long := strings.Repeat("a", 100) + "needle" + strings.Repeat("b", 100)
	got := extractSnippet(long, "needle", 20)
	if !strings.Contains(got, "needle") {
		t.Errorf("snippet should contain the match, got %q", got)
	}
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("snippet should be elided on both sides, got %q", got)
	}

	multi := strings.Repeat("é", 50) + "ñandú" + strings.Repeat("ü", 50)
	got = extractSnippet(multi, "ÑANDÚ", 10)
	if !strings.Contains(got, "ñandú") {
		t.Errorf("expected rune-safe snippet, got %q", got)
	}
}
