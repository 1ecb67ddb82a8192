package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_PassesValidation(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() must validate, got: %v", err)
	}
}

func TestValidate_RejectsEmptyTargetLanguages(t *testing.T) {
	cfg := Default()
	cfg.TargetLanguages = nil
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for empty target_languages")
	}
}

func TestValidate_RejectsTargetEqualToSource(t *testing.T) {
	cfg := Default()
	cfg.SrcLang = "es"
	cfg.TargetLanguages = []string{"es"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when target language equals source")
	}
}

func TestValidate_RejectsInvalidASRURL(t *testing.T) {
	cfg := Default()
	cfg.ASRURL = "not-a-url"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for invalid asr_server_url")
	}
}

func TestApplyTuningFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translator.json")
	contents := `{"target_languages": ["de", "fr"], "buffer_trimming_mode": "sentence", "buffer_trimming_seconds": 30, "mt_max_tokens": 256}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}

	cfg := Default()
	if err := cfg.applyTuningFile(path); err != nil {
		t.Fatalf("applyTuningFile: %v", err)
	}

	if len(cfg.TargetLanguages) != 2 || cfg.TargetLanguages[0] != "de" {
		t.Fatalf("TargetLanguages = %v, want [de fr]", cfg.TargetLanguages)
	}
	if string(cfg.TrimMode) != "sentence" {
		t.Fatalf("TrimMode = %q, want sentence", cfg.TrimMode)
	}
	if cfg.TrimSeconds != 30 {
		t.Fatalf("TrimSeconds = %v, want 30", cfg.TrimSeconds)
	}
	if cfg.MTMaxTokens != 256 {
		t.Fatalf("MTMaxTokens = %d, want 256", cfg.MTMaxTokens)
	}
}

func TestApplyTuningFile_MissingFileIsNotAnError(t *testing.T) {
	cfg := Default()
	if err := cfg.applyTuningFile(filepath.Join(t.TempDir(), "missing.json")); err != nil {
		t.Fatalf("missing tuning file should be ignored, got: %v", err)
	}
}

func TestSplitCSV(t *testing.T) {
	cases := map[string][]string{
		"es,fr,de": {"es", "fr", "de"},
		"es":       {"es"},
		"":         nil,
	}
	for in, want := range cases {
		got := splitCSV(in)
		if len(got) != len(want) {
			t.Fatalf("splitCSV(%q) = %v, want %v", in, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("splitCSV(%q)[%d] = %q, want %q", in, i, got[i], want[i])
			}
		}
	}
}
