package commands

import (
	"strings"
	"testing"

	apierrors "github.com/neuroai/neurochat/internal/errors"
)

func TestModelCommand_Show(t *testing.T) {
	env := newTestEnv(t)
	env.backend.Config.ModelAvailable = true

	if err := env.run("model"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := env.stdout.String()
	for _, want := range []string{"Local Model", "not set", "available"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
	if env.backend.SetCalls != 0 {
		t.Error("showing the model should not write config")
	}
}

func TestModelCommand_Switch(t *testing.T) {
	tests := []struct {
		arg       string
		want      bool
		wantLabel string
	}{
		{"gemini", true, "Gemini API"},
		{"LOCAL", false, "Local Model"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			env := newTestEnv(t)

			if err := env.run("model", tt.arg); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			update := env.backend.LastUpdate
			if update.UseAlternateModel == nil || *update.UseAlternateModel != tt.want {
				t.Errorf("update = %s", update)
			}
			if update.APIKey != nil {
				t.Error("switching model must not send a key")
			}
			if !strings.Contains(env.stdout.String(), "Switched to "+tt.wantLabel) {
				t.Errorf("stdout = %q", env.stdout.String())
			}
		})
	}
}

func TestModelCommand_GeminiWithoutKeyWarns(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run("model", "gemini"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(env.stderr.String(), "neurochat key") {
		t.Errorf("expected a hint to set the key, got %q", env.stderr.String())
	}
}

func TestModelCommand_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.backend.SetErr = apierrors.NewAPIError(500, "/config", "boom")

	if err := env.run("model", "gemini"); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(env.stderr.String(), "Failed to switch model") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestParseModelArg(t *testing.T) {
	tests := []struct {
		arg     string
		want    bool
		wantErr bool
	}{
		{"local", false, false},
		{"gemini", true, false},
		{" Gemini ", true, false},
		{"gpt", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseModelArg(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseModelArg(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseModelArg(%q) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}
}
