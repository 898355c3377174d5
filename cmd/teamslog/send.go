package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/taknb2nch/teamslog"
)

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send MESSAGE",
		Short: "Post a notification to the webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rec, err := buildRecord(args[0])
			if err != nil {
				return err
			}

			// The record level is chosen on the command line, so it is
			// always delivered.
			h, err := teamslog.NewFromConfig(cfg, teamslog.WithLevel(teamslog.LevelDebug))
			if err != nil {
				return err
			}

			if err := h.Handle(context.Background(), rec); err != nil {
				return err
			}

			if !isatty.IsTerminal(os.Stdout.Fd()) {
				color.NoColor = true
			}

			c := color.New(color.FgGreen)
			fmt.Printf("%s %s notification to %s\n", c.Sprint("sent"), rec.LevelName, teamslog.RedactURL(cfg.WebhookURL))

			return nil
		},
	}
}

func loadConfig() (teamslog.Config, error) {
	cfg, err := teamslog.LoadConfig(configPath)
	if err != nil {
		return teamslog.Config{}, err
	}

	if webhookURL != "" {
		cfg.WebhookURL = webhookURL
	}

	if styleName != "" {
		cfg.Style = styleName
	}

	if senderName != "" {
		cfg.Name = senderName
	}

	return cfg, nil
}

func buildRecord(msg string) (teamslog.Record, error) {
	level, err := teamslog.ParseLevel(levelName)
	if err != nil {
		return teamslog.Record{}, err
	}

	fields, err := parseFacts(factArgs)
	if err != nil {
		return teamslog.Record{}, err
	}

	if snoozeURL != "" {
		fields = append(fields, teamslog.Snooze(snoozeURL))
	}

	return teamslog.Record{
		Level:     level,
		LevelName: strings.ToLower(level.String()),
		Message:   msg,
		Fields:    fields,
	}, nil
}

func parseFacts(args []string) ([]teamslog.Field, error) {
	fields := make([]teamslog.Field, 0, len(args))

	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid fact %q, expected name=value", a)
		}

		fields = append(fields, teamslog.F(name, value))
	}

	return fields, nil
}
