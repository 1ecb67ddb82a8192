package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFile_WritesFrontMatterAndCommittedText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")

	f, err := NewFile(path, "fr")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	if err = f.Write("bonjour", true); err != nil {
		t.Fatalf("Write committed: %v", err)
	}
	if err = f.Write("ignored", false); err != nil {
		t.Fatalf("Write incomplete: %v", err)
	}
	if err = f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	contents := string(data)

	if !strings.Contains(contents, "language: fr") {
		t.Fatalf("missing front matter, got: %q", contents)
	}
	if !strings.Contains(contents, "bonjour") {
		t.Fatalf("missing committed text, got: %q", contents)
	}
	if strings.Contains(contents, "ignored") {
		t.Fatalf("incomplete text must never be written, got: %q", contents)
	}
}

func TestFile_CreateFailsOnUnwritableDir(t *testing.T) {
	if _, err := NewFile("/nonexistent-dir/out.md", "en"); err == nil {
		t.Fatalf("expected error creating file in nonexistent directory")
	}
}
