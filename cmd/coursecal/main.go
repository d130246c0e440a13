package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"coursecal/internal/config"
	"coursecal/internal/ics"
	appLog "coursecal/internal/log"
	"coursecal/internal/model"
	"coursecal/internal/store"
	"coursecal/internal/validate"
	"coursecal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	compile    string
	out        string
	debug      bool
}

func main() {
	appLog.Info("coursecal starting", "version", "0.1.0")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	gen, err := ics.New(conf.Timezone)
	if err != nil {
		appLog.Error("failed to initialize calendar generator", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	// One-shot mode: compile a JSON event list to an .ics file and exit.
	if flags.compile != "" {
		if err := compileFile(conf, gen, flags.compile, flags.out); err != nil {
			appLog.Error("compile failed", err, "input", flags.compile)
			os.Exit(1)
		}
		return
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"data_dir", conf.DataDir,
		"session_ttl_hours", conf.SessionTTLHours,
		"cleanup_cron", conf.CleanupCron,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	st := store.New()

	// Periodic cleanup of idle sessions.
	scheduler := cron.New()
	if ttl := conf.SessionTTL(); ttl > 0 {
		if _, err := scheduler.AddFunc(conf.CleanupCron, func() {
			st.PruneExpired(ttl)
		}); err != nil {
			appLog.Error("invalid cleanup_cron schedule", err, "cleanup_cron", conf.CleanupCron)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- web.StartServer(ctx, conf, st, gen)
	}()

	select {
	case err := <-serverErr:
		appLog.Error("HTTP server stopped", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	// Give in-flight log writes a moment before exiting.
	time.Sleep(100 * time.Millisecond)
	appLog.Info("coursecal exiting")
}

// compileFile reads a JSON array of events, validates and deduplicates
// them, and writes the compiled calendar to outPath.
func compileFile(conf *config.Config, gen *ics.Generator, inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	events, err := decodeEvents(data, gen)
	if err != nil {
		return err
	}

	unique, duplicates := validate.Deduplicate(events)
	if len(duplicates) > 0 {
		appLog.Info("removed duplicate events", "count", len(duplicates))
	}

	validator := validate.New(gen.Location())
	for key, res := range validator.ValidateBatch(unique) {
		for _, issue := range res.Errors {
			appLog.Warn("validation error", "event", key, "field", issue.Field, "message", issue.Message)
		}
		for _, issue := range res.Warnings {
			appLog.Debug("validation warning", "event", key, "field", issue.Field, "message", issue.Message)
		}
	}

	content, err := gen.Generate(unique, conf.CalendarName)
	if err != nil {
		return err
	}

	if report := ics.CheckCompatibility(content); !report.IsValid {
		appLog.Warn("compatibility check failed", "errors", len(report.Errors))
	}

	if err := os.WriteFile(outPath, []byte(content), 0o600); err != nil {
		return err
	}
	appLog.Info("calendar written", "path", outPath, "events", len(unique))
	return nil
}

// decodeEvents parses a JSON event array. Entries in the legacy flat
// shape (date + time + duration instead of startDateTime/endDateTime)
// are converted through model.FromSimple.
func decodeEvents(data []byte, gen *ics.Generator) ([]model.CalendarEvent, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	events := make([]model.CalendarEvent, 0, len(raw))
	for i, msg := range raw {
		var ev model.CalendarEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if ev.StartDateTime == "" {
			var simple model.SimpleEvent
			if err := json.Unmarshal(msg, &simple); err == nil && simple.Date != "" {
				conv, err := model.FromSimple(simple, gen.Location())
				if err != nil {
					return nil, fmt.Errorf("event %d: %w", i, err)
				}
				ev = conv
			}
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./coursecal.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.compile, "compile", "", "Compile a JSON event list to an .ics file and exit")
	flag.StringVar(&cfg.out, "out", "calendar.ics", "Output path for -compile mode")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
