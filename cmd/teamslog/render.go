package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/taknb2nch/teamslog"
)

// renderWebhookURL stands in for the webhook when rendering without one.
// Nothing is ever posted to it.
const renderWebhookURL = "http://localhost/render"

func renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render MESSAGE",
		Short: "Print the payload that send would post",
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

			out, err := renderPayload(cfg, rec)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return nil
		},
	}
}

// renderPayload formats rec with a handler built from cfg, the way send
// does, and returns the indented JSON.
func renderPayload(cfg teamslog.Config, rec teamslog.Record) ([]byte, error) {
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = renderWebhookURL
	}

	h, err := teamslog.NewFromConfig(cfg, teamslog.WithErrorOutput(nil))
	if err != nil {
		return nil, err
	}

	p, err := h.Format(rec)
	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(p, "", "  ")
}
