package translate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vocalstream/translator/internal/metrics"
	"github.com/vocalstream/translator/internal/transcript"
)

// Sink is the minimal capability the translation pipeline needs from an
// output destination: accept one piece of text, tagged complete or not.
// internal/sink implementations satisfy this structurally.
type Sink interface {
	Write(text string, isComplete bool) error
}

// Target is one translation destination: a target language, the backend
// that translates into it, and the sinks that receive the result.
type Target struct {
	Lang    string
	Backend Backend
	Sinks   []Sink
}

type queueItem struct {
	segment    transcript.Segment
	isComplete bool
}

// Pipeline is the Translation Fan-Out stage (C5): a single bounded queue
// drained by one dedicated worker goroutine, dispatching each dequeued
// segment to every configured target language, per spec §4.5.
type Pipeline struct {
	srcLang  string
	srcSinks []Sink
	targets  []Target
	queue    chan queueItem

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// defaultQueueCapacity bounds the translation queue; beyond it PutText
// drops the new segment rather than blocking the caller.
const defaultQueueCapacity = 64

// translationErrorSentinel is written to a target's sinks in place of a
// translation when its backend call fails, matching translation.py's
// behavior of surfacing the failure in-band rather than dropping the
// utterance from the output.
const translationErrorSentinel = "[ Translation Error ]"

// NewPipeline creates a translation fan-out pipeline for one source
// language and a fixed set of translation targets.
func NewPipeline(srcLang string, srcSinks []Sink, targets []Target) *Pipeline {
	return &Pipeline{
		srcLang:  srcLang,
		srcSinks: srcSinks,
		targets:  targets,
		queue:    make(chan queueItem, defaultQueueCapacity),
	}
}

// Start launches the dedicated worker goroutine that drains the queue.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	go p.run(runCtx)
}

// Stop signals the worker to exit and waits for it to drain.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()
	<-done

	for _, s := range p.srcSinks {
		_ = closeSink(s)
	}
	for _, t := range p.targets {
		for _, s := range t.Sinks {
			_ = closeSink(s)
		}
	}
}

func closeSink(s Sink) error {
	if closer, ok := s.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// PutText writes the source-language segment to the source sinks
// immediately, then enqueues it for translation. A full queue drops the
// new segment and counts it, rather than blocking the caller.
func (p *Pipeline) PutText(seg transcript.Segment, isComplete bool) error {
	if seg.IsEmpty() {
		return fmt.Errorf("translate: empty text segment")
	}

	for _, s := range p.srcSinks {
		if err := s.Write(seg.Text, isComplete); err != nil {
			slog.Warn("source sink write failed", "lang", p.srcLang, "error", err)
		}
	}

	select {
	case p.queue <- queueItem{segment: seg, isComplete: isComplete}:
		metrics.TranslationQueueDepth.WithLabelValues(p.srcLang).Set(float64(len(p.queue)))
	default:
		metrics.TranslationDropsTotal.WithLabelValues(p.srcLang).Inc()
		slog.Warn("translation queue full, dropping segment", "lang", p.srcLang)
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context) {
	defer close(p.done)

	for {
		select {
		case <-ctx.Done():
			return
		case item := <-p.queue:
			metrics.TranslationQueueDepth.WithLabelValues(p.srcLang).Set(float64(len(p.queue)))
			p.handle(ctx, item)
		case <-time.After(1 * time.Second):
			// Queue empty: nothing to do this tick, matches the reference
			// translation thread's get(timeout=1) polling loop.
		}
	}
}

func (p *Pipeline) handle(ctx context.Context, item queueItem) {
	queueDepth := len(p.queue)
	if !item.isComplete && queueDepth > 0 {
		slog.Warn("skipping incomplete translation, more items queued", "queue_depth", queueDepth)
		return
	}

	for _, target := range p.targets {
		start := time.Now()
		translated, err := target.Backend.Translate(ctx, item.segment.Text, p.srcLang, target.Lang)
		if err != nil {
			metrics.Errors.WithLabelValues("translate", "backend").Inc()
			slog.Warn("translation failed", "lang", target.Lang, "error", err)
			translated = translationErrorSentinel
		} else {
			metrics.StageDuration.WithLabelValues("translate_" + target.Lang).Observe(time.Since(start).Seconds())
		}

		for _, s := range target.Sinks {
			if err = s.Write(translated, item.isComplete); err != nil {
				slog.Warn("sink write failed", "lang", target.Lang, "error", err)
			}
		}
	}
}
