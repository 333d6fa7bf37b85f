package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/api"
	"github.com/sawdustofmind/matchday-predictor/internal/batch"
	"github.com/sawdustofmind/matchday-predictor/internal/config"
	"github.com/sawdustofmind/matchday-predictor/internal/log"
	"github.com/sawdustofmind/matchday-predictor/internal/models"
	"github.com/sawdustofmind/matchday-predictor/internal/predict"
)

func run(cfg *config.Config) int {
	filePath := flag.String("file", "predictions.csv", "Path to the predictions file (match_id,home,away per line)")
	apiURL := flag.String("api", cfg.API.URL, "Prediction API URL")
	email := flag.String("email", os.Getenv("PREDICTOR_EMAIL"), "Account email")
	password := flag.String("password", os.Getenv("PREDICTOR_PASSWORD"), "Account password")
	speed := flag.Duration("speed", 200*time.Millisecond, "delay between two submissions")
	flag.Parse()

	log.Info("Starting batch submission",
		zap.String("file", *filePath),
		zap.String("api_url", *apiURL),
		zap.Duration("speed", *speed),
	)

	if *email == "" || *password == "" {
		log.Error("Email and password are required")
		return 2
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutdown signal received, stopping")
		cancel()
	}()

	lines, err := batch.ParseFile(*filePath)
	if err != nil {
		log.Error("Error parsing file", zap.Error(err))
		return 1
	}
	if len(lines) == 0 {
		log.Info("Nothing to submit")
		return 0
	}

	client := api.NewClient(*apiURL, cfg.API.Timeout)
	token, err := client.Login(ctx, models.Credentials{Email: *email, Password: *password})
	if err != nil {
		log.Error("Login failed", zap.String("reason", api.Message(err)), zap.Error(err))
		return 1
	}

	linesCh := make(chan batch.Line, len(lines))
	for _, l := range lines {
		linesCh <- l
	}
	close(linesCh)

	submitter := batch.NewSubmitter(predict.NewEditor(client, nil), token, *speed)
	report, err := submitter.Run(ctx, linesCh)
	log.Info("Batch finished",
		zap.Int("submitted", report.Submitted),
		zap.Int("failed", report.Failed),
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Error submitting predictions", zap.Error(err))
		return 1
	}
	if report.Failed > 0 {
		return 1
	}
	return 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := log.Init(cfg.Logs.Development, cfg.Logs.Level); err != nil {
		panic(err)
	}

	code := run(cfg)
	_ = log.Sync()
	os.Exit(code)
}
