package translate

import "testing"

func TestDeepLCode_English(t *testing.T) {
	if got := DeepLCode("en"); got != "EN-US" {
		t.Fatalf("DeepLCode(en) = %q, want EN-US", got)
	}
}

func TestDeepLCode_UppercasesOtherLanguages(t *testing.T) {
	if got := DeepLCode("fr"); got != "FR" {
		t.Fatalf("DeepLCode(fr) = %q, want FR", got)
	}
}

func TestLanguageName_KnownCodes(t *testing.T) {
	for code, want := range map[string]string{"en": "English", "de": "Deutsch", "ja": "日本語"} {
		if got := LanguageName[code]; got != want {
			t.Fatalf("LanguageName[%s] = %q, want %q", code, got, want)
		}
	}
}
