package sink

import (
	"fmt"
	"os"
)

// Sink is an output destination for one language's translated (or source)
// text stream: Console, File, and Web each implement it (spec §4.6).
type Sink interface {
	Write(text string, isComplete bool) error
	Close() error
}

// Console writes committed text to stdout with an ANSI-colored language tag,
// and incomplete text in red, matching the reference ConsoleOutputStream.
type Console struct {
	language string
	color    int
}

// NewConsole creates a console sink tagging output with language and an
// ANSI color code (e.g. 93 for the source language, 36 for a target).
func NewConsole(language string, color int) *Console {
	return &Console{language: language, color: color}
}

func (c *Console) Write(text string, isComplete bool) error {
	if isComplete {
		fmt.Printf("\033[%dm[%s]\033[0m: %s\n", c.color, c.language, text)
	} else {
		fmt.Printf("\033[%dm[%s]\033[0m: \033[31m%s\033[0m\n", c.color, c.language, text)
	}
	return nil
}

func (c *Console) Close() error { return nil }

// File appends committed text to a Markdown file, one space-separated
// segment at a time, flushing after every write. Incomplete text is never
// written, matching the reference FileOutputStream.
type File struct {
	language string
	out      *os.File
}

// NewFile opens path for writing and stamps it with a language front-matter
// header, as the reference FileOutputStream does for its Markdown sinks.
func NewFile(path, language string) (*File, error) {
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create sink file %s: %w", path, err)
	}
	if _, err = fmt.Fprintf(out, "---\nlanguage: %s\n---\n\n", language); err != nil {
		out.Close()
		return nil, fmt.Errorf("write front matter: %w", err)
	}
	return &File{language: language, out: out}, nil
}

func (f *File) Write(text string, isComplete bool) error {
	if !isComplete {
		return nil
	}
	if _, err := fmt.Fprintf(f.out, "%s ", text); err != nil {
		return fmt.Errorf("write sink file: %w", err)
	}
	return f.out.Sync()
}

func (f *File) Close() error {
	return f.out.Close()
}
