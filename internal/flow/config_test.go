package flow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(cfg.Questions) != 8 {
		t.Fatalf("len(questions) = %d, want 8", len(cfg.Questions))
	}
	if cfg.Questions[0] != types.StateLanguageDetection {
		t.Fatalf("first question = %s, want %s", cfg.Questions[0], types.StateLanguageDetection)
	}
	if cfg.Questions[len(cfg.Questions)-1] != types.StateVisaTimelineQuestion {
		t.Fatalf("last question = %s, want %s", cfg.Questions[len(cfg.Questions)-1], types.StateVisaTimelineQuestion)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty sequence", Config{}},
		{"non-question state", Config{Questions: []types.ConvState{types.StateGreeting}}},
		{"duplicate question", Config{Questions: []types.ConvState{
			types.StateDegreeQuestion, types.StateDegreeQuestion,
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Questions) != len(DefaultConfig().Questions) {
		t.Fatalf("empty path must return the default sequence, got %v", cfg.Questions)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yaml")
	data := []byte("questions:\n  - language_detection\n  - degree_question\n  - loan_amount_question\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := []types.ConvState{
		types.StateLanguageDetection,
		types.StateDegreeQuestion,
		types.StateLoanAmountQuestion,
	}
	if len(cfg.Questions) != len(want) {
		t.Fatalf("questions = %v, want %v", cfg.Questions, want)
	}
	for i := range want {
		if cfg.Questions[i] != want[i] {
			t.Fatalf("questions[%d] = %s, want %s", i, cfg.Questions[i], want[i])
		}
	}
}

func TestLoadConfigRejectsBadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yaml")
	data := []byte("questions:\n  - greeting\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for a non-question state")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
