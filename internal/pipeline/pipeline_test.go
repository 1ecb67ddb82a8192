package pipeline

import "testing"

func TestValidate_RejectsEmptyTargetLanguages(t *testing.T) {
	if err := Validate("en", nil); err == nil {
		t.Fatalf("expected error for empty target_languages")
	}
}

func TestValidate_RejectsTargetEqualToSource(t *testing.T) {
	if err := Validate("en", []string{"fr", "en"}); err == nil {
		t.Fatalf("expected error when a target language equals the source language")
	}
}

func TestValidate_AcceptsDistinctTargets(t *testing.T) {
	if err := Validate("en", []string{"fr", "de"}); err != nil {
		t.Fatalf("Validate = %v, want nil", err)
	}
}
