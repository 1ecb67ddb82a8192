package sink

import (
	"strings"
	"sync"
)

// Web accumulates committed text in an append-only buffer and keeps the
// single latest incomplete fragment, for polling by a browser client
// (spec §4.6, reference WebOutputStream). Unlike the Python original this
// is not a process-wide class registry; each session owns its own Web
// sinks via a pipeline-scoped Registry.
type Web struct {
	language string

	mu         sync.Mutex
	buffer     []string
	newSince   int
	incomplete string
}

// NewWeb creates a web sink for one language.
func NewWeb(language string) *Web {
	return &Web{language: language}
}

func modifyForWeb(text string) string {
	text = strings.ReplaceAll(text, "\n", "<br>")
	return strings.ReplaceAll(text, " ", "&nbsp;")
}

func (w *Web) Write(text string, isComplete bool) error {
	rendered := modifyForWeb(text)

	w.mu.Lock()
	defer w.mu.Unlock()
	if isComplete {
		w.buffer = append(w.buffer, rendered)
	} else {
		w.incomplete = rendered
	}
	return nil
}

func (w *Web) Close() error { return nil }

// PollNew returns the committed text written since the last PollNew call,
// plus the current incomplete fragment, matching get_new_content.
func (w *Web) PollNew() (committed, incomplete string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	committed = strings.Join(w.buffer[w.newSince:], " ")
	w.newSince = len(w.buffer)
	incomplete = w.incomplete
	return committed, incomplete
}

// Snapshot returns the entire committed buffer plus the current incomplete
// fragment, matching get_full_content.
func (w *Web) Snapshot() (committed, incomplete string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Join(w.buffer, " "), w.incomplete
}

// Registry maps a language to its Web sink within one session. One is
// created per session by internal/ws.Handler, not a package-level
// singleton, so that two concurrent sessions never see each other's
// streams (Open Question in DESIGN.md).
type Registry struct {
	mu      sync.RWMutex
	streams map[string]*Web
}

// NewRegistry creates an empty, session-scoped web sink registry.
func NewRegistry() *Registry {
	return &Registry{streams: make(map[string]*Web)}
}

// Register adds a Web sink under the given language key and returns it.
func (r *Registry) Register(language string) *Web {
	w := NewWeb(language)
	r.mu.Lock()
	r.streams[language] = w
	r.mu.Unlock()
	return w
}

// Get returns the Web sink for a language, if registered.
func (r *Registry) Get(language string) (*Web, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.streams[language]
	return w, ok
}

// Languages returns the languages currently registered.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]string, 0, len(r.streams))
	for lang := range r.streams {
		langs = append(langs, lang)
	}
	return langs
}

// Remove unregisters a language's stream.
func (r *Registry) Remove(language string) {
	r.mu.Lock()
	delete(r.streams, language)
	r.mu.Unlock()
}
