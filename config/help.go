package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
Ride dispatch service

Usage:
  dispatch [--config-path <file>]
  dispatch --help

Options:
  --help            Show this screen.
  --config-path     Path to the yaml config (default: config.yaml).
                    Environment variables and .env override the file.

Optional backends stay disabled until configured:
  RABBITMQ_ENABLED, REDIS_ENABLED, ROUTING_GOOGLE_API_KEY, WALLET_URL,
  FIREBASE_PROJECT_ID, SMS_API_KEY, SMTP_HOST, S3_ENDPOINT
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}
