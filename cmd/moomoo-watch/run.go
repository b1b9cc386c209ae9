package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tonypeng1/moomoo/internal/alert"
	"github.com/tonypeng1/moomoo/internal/capture"
	"github.com/tonypeng1/moomoo/internal/config"
	"github.com/tonypeng1/moomoo/internal/episode"
	apperrors "github.com/tonypeng1/moomoo/internal/errors"
	"github.com/tonypeng1/moomoo/internal/history"
	"github.com/tonypeng1/moomoo/internal/recognize"
	"github.com/tonypeng1/moomoo/internal/server"
	"github.com/tonypeng1/moomoo/internal/variant"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single detection cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ctrl, cleanup, err := buildController(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		_, err = ctrl.RunOnce(ctx)
		return err
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run detection cycles on the configured interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeSetup, "configuration invalid")
		}

		ctrl, cleanup, err := buildControllerWith(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		if cfg.HTTPAddr != "" {
			srv := server.New(cfg.HTTPAddr, ctrl)
			go func() {
				if err := srv.ListenAndServe(ctx); err != nil {
					slog.Error("status server failed", "error", err)
				}
			}()
		}

		ctrl.Run(ctx, cfg.Interval)
		return nil
	},
}

func buildController(ctx context.Context) (*episode.Controller, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeSetup, "configuration invalid")
	}
	return buildControllerWith(ctx, cfg)
}

// buildControllerWith wires the full pipeline from configuration. Any
// error here is a setup failure; nothing has run yet.
func buildControllerWith(ctx context.Context, cfg *config.Config) (*episode.Controller, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	source := capture.New()
	cleanups = append(cleanups, source.Close)

	gen := variant.NewGenerator(variant.DefaultTransforms(variant.Options{
		Upscale:             cfg.Upscale,
		ThresholdPercentile: cfg.ThresholdPercentile,
	})...)

	recognizers, recCleanups, err := buildRecognizers(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, recCleanups...)

	var store episode.Store
	if cfg.HistoryPath != "" {
		h, err := history.Open(cfg.HistoryPath)
		if err != nil {
			cleanup()
			return nil, nil, apperrors.Wrap(err, apperrors.CodeSetup, "history store unavailable")
		}
		cleanups = append(cleanups, func() { _ = h.Close() })
		store = h
	}

	ctrl := episode.NewController(source, gen, recognizers, buildDispatcher(cfg), store, episode.Options{
		Region:           capture.Region{X: cfg.RegionX, Y: cfg.RegionY, Width: cfg.RegionWidth, Height: cfg.RegionHeight},
		Terms:            cfg.Terms,
		Concurrency:      cfg.Concurrency,
		DedupEnabled:     cfg.DedupEnabled,
		DedupMaxDistance: cfg.DedupMaxDistance,
	})
	return ctrl, cleanup, nil
}

func buildRecognizers(ctx context.Context, cfg *config.Config) ([]recognize.Recognizer, []func(), error) {
	tess, err := recognize.NewTesseract(cfg.TesseractBin, cfg.TesseractLangs)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeSetup, "tesseract unavailable")
	}
	recognizers := []recognize.Recognizer{tess}
	var cleanups []func()

	if cfg.VisionEnabled {
		vis, err := recognize.NewVision(ctx)
		if err != nil {
			return nil, nil, apperrors.Wrap(err, apperrors.CodeSetup, "vision client unavailable")
		}
		cleanups = append(cleanups, func() { _ = vis.Close() })
		recognizers = append(recognizers, vis)
	}

	lib, err := recognize.LoadLibrary(cfg.TemplateDir, cfg.Terms)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeSetup, "template library unavailable")
	}
	if lib.Len() > 0 {
		recognizers = append(recognizers, recognize.NewMatcher(lib, cfg.TemplateThreshold, cfg.DebugDir))
	} else {
		slog.Info("no templates found, template matching disabled", "dir", cfg.TemplateDir)
	}
	return recognizers, cleanups, nil
}

func buildDispatcher(cfg *config.Config) *alert.Dispatcher {
	var transport alert.Transport
	if cfg.SMSEnabled {
		transport = alert.NewTwilioTransport(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.SMSFrom, cfg.SMSTo)
	}
	var notifier alert.Notifier
	if cfg.NotifyEnabled {
		notifier = alert.NewDesktopNotifier()
	}
	return alert.NewDispatcher(transport, notifier, cfg.MaxMessageLen)
}
