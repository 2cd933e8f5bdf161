package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"fieldtrack.com/fieldtrack/attendance/app"
	"fieldtrack.com/fieldtrack/attendance/core"
	"fieldtrack.com/fieldtrack/config"
	"fieldtrack.com/fieldtrack/infrastructure/logging"
	"fieldtrack.com/fieldtrack/utils"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
)

// RosterEvent is the scheduled trigger payload. Both fields are optional.
type RosterEvent struct {
	Date   string `json:"date"`
	DryRun bool   `json:"dryRun"`
}

type RosterResult struct {
	Date          string `json:"date"`
	CheckedIn     int    `json:"checkedIn"`
	NotCheckedIn  int    `json:"notCheckedIn"`
	NotCheckedOut int    `json:"notCheckedOut"`
	OnLeave       int    `json:"onLeave"`
	Absent        int    `json:"absent"`
	Posted        bool   `json:"posted"`
}

// Run classifies the day's roster and posts the report unless dryRun.
func Run(ctx context.Context, scanner *core.RosterScanner, alerter core.Alerter, event RosterEvent) (*RosterResult, error) {
	day := utils.StartOfDay(scanner.Now())
	if event.Date != "" {
		d, err := utils.ParseDate(event.Date)
		if err != nil {
			return nil, err
		}
		day = d
	}

	rc, err := scanner.Classify(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to classify roster: %w", err)
	}
	res := &RosterResult{
		Date:          rc.Date,
		CheckedIn:     len(rc.CheckedIn),
		NotCheckedIn:  len(rc.NotCheckedIn),
		NotCheckedOut: len(rc.NotCheckedOut),
		OnLeave:       len(rc.OnLeave),
		Absent:        len(rc.Absent),
	}
	if event.DryRun {
		return res, nil
	}

	if err := alerter.Info(core.FormatRoster(rc)); err != nil {
		return nil, err
	}
	res.Posted = true
	return res, nil
}

func HandleRequest(ctx context.Context, event RosterEvent) (*RosterResult, error) {
	cfg, err := config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer a.Close(context.Background())

	res, err := Run(ctx, a.Roster, a.Alerter, event)
	if err != nil {
		log.Error().Err(err).Msg("roster run failed")
		return nil, err
	}
	log.Info().Str("date", res.Date).Int("notCheckedIn", res.NotCheckedIn).Bool("posted", res.Posted).Msg("roster run complete")
	return res, nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(HandleRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	res, err := HandleRequest(ctx, RosterEvent{DryRun: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Printf("[SUCCESS] Results:\n%s\n", string(out))
}
