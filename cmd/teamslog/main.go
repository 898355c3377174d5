package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	webhookURL string
	levelName  string
	styleName  string
	senderName string
	factArgs   []string
	snoozeURL  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "teamslog",
		Short: "Send log notifications to a chat webhook",
		Long:  `teamslog renders a log record as a chat card and posts it to an incoming webhook.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (env: TEAMSLOG_*)")
	rootCmd.PersistentFlags().StringVar(&webhookURL, "webhook", "", "Webhook URL, overrides the config")
	rootCmd.PersistentFlags().StringVarP(&levelName, "level", "l", "info", "Level of the record")
	rootCmd.PersistentFlags().StringVar(&styleName, "style", "", "Payload style (card, simple)")
	rootCmd.PersistentFlags().StringVar(&senderName, "name", "", "Sender name, overrides the config")
	rootCmd.PersistentFlags().StringArrayVarP(&factArgs, "fact", "f", nil, "Fact as name=value, repeatable")
	rootCmd.PersistentFlags().StringVar(&snoozeURL, "snooze", "", "URL opened by the Snooze button")

	rootCmd.AddCommand(sendCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
