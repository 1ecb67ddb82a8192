package config

import "testing"

func TestEnvHelpers_FallBackWhenUnset(t *testing.T) {
	const key = "TRANSLATOR_TEST_UNSET_VAR"
	if got := envStr(key, "default"); got != "default" {
		t.Fatalf("envStr = %q, want default", got)
	}
	if got := envInt(key, 7); got != 7 {
		t.Fatalf("envInt = %d, want 7", got)
	}
	if got := envFloat(key, 1.5); got != 1.5 {
		t.Fatalf("envFloat = %v, want 1.5", got)
	}
	if got := envBool(key, true); got != true {
		t.Fatalf("envBool = %v, want true", got)
	}
}

func TestEnvHelpers_ParseSetValues(t *testing.T) {
	t.Setenv("TRANSLATOR_TEST_INT", "42")
	t.Setenv("TRANSLATOR_TEST_FLOAT", "2.5")
	t.Setenv("TRANSLATOR_TEST_BOOL", "false")

	if got := envInt("TRANSLATOR_TEST_INT", 0); got != 42 {
		t.Fatalf("envInt = %d, want 42", got)
	}
	if got := envFloat("TRANSLATOR_TEST_FLOAT", 0); got != 2.5 {
		t.Fatalf("envFloat = %v, want 2.5", got)
	}
	if got := envBool("TRANSLATOR_TEST_BOOL", true); got != false {
		t.Fatalf("envBool = %v, want false", got)
	}
}

func TestEnvHelpers_FallBackOnUnparseableValue(t *testing.T) {
	t.Setenv("TRANSLATOR_TEST_BAD_INT", "not-a-number")
	if got := envInt("TRANSLATOR_TEST_BAD_INT", 9); got != 9 {
		t.Fatalf("envInt = %d, want fallback 9", got)
	}
}
