package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/docspec/pkg/config"
	"github.com/Sumatoshi-tech/docspec/pkg/observability"
	"github.com/Sumatoshi-tech/docspec/pkg/sentence"
	"github.com/Sumatoshi-tech/docspec/pkg/version"
)

// app carries the configuration and observability providers shared by the
// commands of one invocation.
type app struct {
	cfg       *config.Config
	metrics   *observability.REDMetrics
	counts    *observability.ReconstructionMetrics
	providers observability.Providers
	cfgFile   string
	verbose   bool
}

// start loads configuration and initializes observability for mode. Logs go
// to logWriter.
func (a *app) start(mode observability.AppMode, logWriter io.Writer) error {
	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return err
	}

	obsCfg, err := observabilityConfig(cfg, mode, logWriter, a.verbose)
	if err != nil {
		return err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	counts, err := observability.NewReconstructionMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	a.cfg = cfg
	a.providers = providers
	a.metrics = red
	a.counts = counts

	return nil
}

// stop flushes telemetry.
func (a *app) stop() {
	if a.providers.Shutdown == nil {
		return
	}

	shutdownErr := a.providers.Shutdown(context.Background())
	if shutdownErr != nil {
		a.providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
	}
}

func (a *app) logger() *slog.Logger {
	return a.providers.Logger
}

// reconstructor builds a Reconstructor from the loaded configuration.
func (a *app) reconstructor() *sentence.Reconstructor {
	return sentence.NewReconstructor(
		sentence.Deps{
			Logger:         a.providers.Logger,
			Tracer:         a.providers.Tracer,
			Metrics:        a.metrics,
			Reconstruction: a.counts,
		},
		sentence.Settings{
			MaxDepth:       a.cfg.Reconstruct.MaxDepth,
			TagCheck:       a.cfg.Reconstruct.TagCheck,
			RequireDrained: a.cfg.Reconstruct.RequireDrained,
		},
	)
}

func observabilityConfig(cfg *config.Config, mode observability.AppMode, logWriter io.Writer, verbose bool) (observability.Config, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogWriter = logWriter
	obsCfg.LogJSON = cfg.Logging.JSON || mode == observability.ModeMCP
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.Prometheus = mode == observability.ModeServe

	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return obsCfg, err
	}

	obsCfg.LogLevel = level

	if verbose {
		obsCfg.LogLevel = slog.LevelDebug
	}

	return obsCfg, nil
}

// useColor resolves a color mode for writer. "auto" colors only a terminal stdout.
func useColor(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return writer == os.Stdout && !color.NoColor
	}
}
