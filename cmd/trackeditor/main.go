package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/trackforge/editor/internal/config"
	"github.com/trackforge/editor/internal/editor"
	"github.com/trackforge/editor/internal/engine"
	"github.com/trackforge/editor/internal/typeid"
	"github.com/trackforge/editor/internal/viewer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	eng := engine.NewEngine(engine.Options{
		Session: editor.Options{
			HistoryLimit: cfg.HistoryLimit,
			GridDensity:  cfg.GridDensity,
		},
		SamplesPerSegment: cfg.SamplesPerSegment,
		Width:             float64(cfg.WindowWidth),
		Height:            float64(cfg.WindowHeight),
		Logger:            log,
	})
	eng.SetRoadEditing(true)

	data, err := os.ReadFile(cfg.TrackFile)
	switch {
	case err == nil:
		if err := eng.LoadDocument(string(data)); err != nil {
			log.Error("load track", "file", cfg.TrackFile, "error", err)
			os.Exit(1)
		}
		log.Info("track loaded", "file", cfg.TrackFile)
	case errors.Is(err, os.ErrNotExist):
		eng.LoadSampleDocument(typeid.NewTrackID())
		log.Info("starting from sample track", "file", cfg.TrackFile)
	default:
		log.Error("read track", "file", cfg.TrackFile, "error", err)
		os.Exit(1)
	}

	v := viewer.New(eng, viewer.Options{
		Width:   cfg.WindowWidth,
		Height:  cfg.WindowHeight,
		Title:   "trackforge editor",
		File:    cfg.TrackFile,
		Samples: cfg.SamplesPerSegment,
	}, log)
	v.Run()
}
