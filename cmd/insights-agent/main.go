package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lastro-co/insights-agent/internal/api"
	"github.com/lastro-co/insights-agent/internal/config"
	"github.com/lastro-co/insights-agent/internal/events"
	"github.com/lastro-co/insights-agent/internal/hubspot"
	"github.com/lastro-co/insights-agent/internal/insights"
	"github.com/lastro-co/insights-agent/internal/openai"
	"github.com/lastro-co/insights-agent/internal/processor"
	"github.com/lastro-co/insights-agent/internal/slack"
)

func main() {
	contactID := flag.String("contact-id", "", "run once for a single contact and print the outcome")
	dryRun := flag.Bool("dry-run", false, "with -contact-id, skip writing notes back to the CRM")
	since := flag.Int64("since", 0, "with -contact-id, ignore engagements older than this epoch-ms timestamp")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("insights-agent starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.HubSpotToken == "" {
		slog.Error("HUBSPOT_TOKEN is required")
		os.Exit(1)
	}
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}

	crm := hubspot.NewClient(cfg.HubSpotToken, cfg.SearchLimit, slog.Default())
	if cfg.HubSpotURL != "" {
		crm.SetBaseURL(cfg.HubSpotURL)
	}

	llm := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	slog.Info("openai client ready", "model", cfg.OpenAIModel)

	gen := insights.NewGenerator(llm, slog.Default())
	orch := insights.NewOrchestrator(gen, slog.Default())

	// Events publisher (optional — the agent works without NATS, just no announcements)
	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		var err error
		publisher, err = events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without event announcements")
	}

	var notifier *slack.Notifier
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		notifier = slack.NewNotifier(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
		slog.Info("slack notifier ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured — running without notifications")
	}

	proc := processor.New(crm, orch, publisher, notifier, slog.Default())

	if *contactID != "" {
		runOnce(ctx, proc, *contactID, *dryRun, *since)
		return
	}

	srv := api.NewServer(cfg.Port, cfg.APIToken, proc, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("insights-agent ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("insights-agent stopped")
}

func runOnce(ctx context.Context, proc *processor.Processor, contactID string, dryRun bool, since int64) {
	req := processor.Request{ContactID: contactID, CreateNote: !dryRun}
	if since > 0 {
		req.SinceEpochMs = &since
	}

	outcome := proc.Process(ctx, req)

	out, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		slog.Error("failed to encode outcome", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if !outcome.OK {
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
