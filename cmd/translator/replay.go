package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/vocalstream/translator/internal/asr"
	"github.com/vocalstream/translator/internal/audio"
	"github.com/vocalstream/translator/internal/sink"
	"github.com/vocalstream/translator/internal/translate"
)

// runReplay simulates a live session from a prerecorded WAV file instead
// of a websocket connection, feeding audio through the same C4→C3→C5→C6
// chain in fixed-size chunks at wall-clock pace. Grounded on
// original_source/translation_noserver_test.py's "online" simulation
// mode (spec §4 Supplemented Features).
func runReplay(cfg appConfig, asrRouter *asr.Router[asr.Transcriber], translateRouter *translate.Router[translate.Backend], audioPath string) error {
	samples, srcRate, err := audio.LoadWAVFile(audioPath)
	if err != nil {
		return fmt.Errorf("replay: load audio: %w", err)
	}
	if srcRate != audio.SampleRate {
		samples = audio.Resample(samples, srcRate, audio.SampleRate)
	}
	duration := float64(len(samples)) / float64(audio.SampleRate)
	slog.Info("replay starting", "path", audioPath, "duration_s", duration)

	transcriber, err := asrRouter.Route(cfg.ASREngine)
	if err != nil {
		return fmt.Errorf("replay: route asr: %w", err)
	}

	trim := asr.TrimConfig{Mode: cfg.TrimMode, Seconds: cfg.TrimSeconds}
	vac, err := asr.NewVACProcessor(transcriber, trim, asr.NewPassthroughVAD())
	if err != nil {
		return fmt.Errorf("replay: vac processor: %w", err)
	}

	srcSinks := []translate.Sink{sink.NewConsole(cfg.SrcLang, 93)}
	targets := make([]translate.Target, 0, len(cfg.TargetLanguages))
	for i, lang := range cfg.TargetLanguages {
		backend, routeErr := translateRouter.Route(cfg.MTEngine)
		if routeErr != nil {
			return fmt.Errorf("replay: route translate: %w", routeErr)
		}
		var sinks []translate.Sink
		sinks = append(sinks, sink.NewConsole(lang, 36+i%4))
		if cfg.OutputFolder != "" {
			path := fmt.Sprintf("%s/%s.md", cfg.OutputFolder, lang)
			if f, fileErr := sink.NewFile(path, lang); fileErr == nil {
				sinks = append(sinks, f)
			}
		}
		targets = append(targets, translate.Target{Lang: lang, Backend: backend, Sinks: sinks})
	}

	tp := translate.NewPipeline(cfg.SrcLang, srcSinks, targets)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tp.Start(ctx)
	defer tp.Stop()

	const minChunkSeconds = 1.0
	chunkSamples := int(minChunkSeconds * audio.SampleRate)

	start := time.Now()
	for beg := 0; beg < len(samples); beg += chunkSamples {
		end := beg + chunkSamples
		if end > len(samples) {
			end = len(samples)
		}
		vac.InsertAudio(samples[beg:end])

		committed, uncommitted := vac.ProcessIter(ctx)
		if !committed.IsEmpty() {
			slog.Debug("replay committed", "text", committed.Text)
			tp.PutText(committed, true)
		}
		if !uncommitted.IsEmpty() {
			tp.PutText(uncommitted, false)
		}

		now := float64(end) / float64(audio.SampleRate)
		if elapsed := time.Since(start).Seconds(); elapsed < now {
			time.Sleep(time.Duration((now - elapsed) * float64(time.Second)))
		}
	}

	committed, _ := vac.Finish(ctx)
	if !committed.IsEmpty() {
		tp.PutText(committed, true)
	}

	slog.Info("replay finished", "path", audioPath)
	return nil
}

func maybeRunReplay(cfg appConfig, asrRouter *asr.Router[asr.Transcriber], translateRouter *translate.Router[translate.Backend]) bool {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	audioPath := fs.String("replay", "", "path to a 16kHz mono WAV file to replay instead of starting the server")
	if err := fs.Parse(os.Args[1:]); err != nil || *audioPath == "" {
		return false
	}
	if err := runReplay(cfg, asrRouter, translateRouter, *audioPath); err != nil {
		slog.Error("replay failed", "error", err)
		os.Exit(1)
	}
	return true
}
