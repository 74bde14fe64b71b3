// Package config loads the bot's runtime settings from the environment.
// Required variables fail the process fast, naming everything that is
// missing, instead of starting half-configured.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime settings for the auto-filter bot.
//
// Fields:
//   - APIID / APIHash: platform application identity credentials.
//   - BotToken: bot credentials for the messaging transport.
//   - BotUsername: public bot name, used to strip "@bot" command suffixes.
//   - DatabaseDSN: PostgreSQL DSN (pgx).
//   - FilesChannelID: the single trusted source channel whose posts get indexed.
//   - LogChannelID: audit channel receiving startup/shutdown notices.
//   - SearchPageCap: maximum results per query.
//   - DeliveryMode: "callback" (buttons, deliver on selection) or "batch"
//     (deliver every hit immediately).
//   - DeliveryMaxAttempts / DeliveryMaxBackoff: bounds for the rate-limit
//     retry loop.
//   - DeliverySpacing: pause between items of one delivery batch.
type Config struct {
	APIID               int
	APIHash             string
	BotToken            string
	BotUsername         string
	DatabaseDSN         string
	FilesChannelID      int64
	LogChannelID        int64
	SearchPageCap       int
	DeliveryMode        string
	DeliveryMaxAttempts int
	DeliveryMaxBackoff  time.Duration
	DeliverySpacing     time.Duration
}

// Required environment variables.
const (
	envAPIID        = "API_ID"
	envAPIHash      = "API_HASH"
	envBotToken     = "BOT_TOKEN"
	envDatabaseDSN  = "DATABASE_DSN"
	envFilesChannel = "FILES_CHANNEL"
	envLogChannel   = "LOG_CHANNEL"
)

// Optional environment variables.
const (
	envBotUsername         = "BOT_USERNAME"
	envSearchPageCap       = "SEARCH_PAGE_CAP"
	envDeliveryMode        = "DELIVERY_MODE"
	envDeliveryMaxAttempts = "DELIVERY_MAX_ATTEMPTS"
	envDeliveryMaxBackoff  = "DELIVERY_MAX_BACKOFF"
	envDeliverySpacing     = "DELIVERY_SPACING"
)

// Load reads the configuration from the environment. It returns an error
// naming every missing required variable and every malformed value.
func Load() (*Config, error) {
	cfg := &Config{
		BotUsername:         "MovieFilterBot",
		SearchPageCap:       20,
		DeliveryMode:        "callback",
		DeliveryMaxAttempts: 3,
		DeliveryMaxBackoff:  60 * time.Second,
		DeliverySpacing:     1 * time.Second,
	}

	var problems []string

	requireString(envAPIHash, &cfg.APIHash, &problems)
	requireString(envBotToken, &cfg.BotToken, &problems)
	requireString(envDatabaseDSN, &cfg.DatabaseDSN, &problems)
	requireInt(envAPIID, &cfg.APIID, &problems)
	requireInt64(envFilesChannel, &cfg.FilesChannelID, &problems)
	requireInt64(envLogChannel, &cfg.LogChannelID, &problems)

	if v := os.Getenv(envBotUsername); v != "" {
		cfg.BotUsername = v
	}
	optionalInt(envSearchPageCap, &cfg.SearchPageCap, &problems)
	optionalInt(envDeliveryMaxAttempts, &cfg.DeliveryMaxAttempts, &problems)
	optionalDuration(envDeliveryMaxBackoff, &cfg.DeliveryMaxBackoff, &problems)
	optionalDuration(envDeliverySpacing, &cfg.DeliverySpacing, &problems)

	if v := os.Getenv(envDeliveryMode); v != "" {
		cfg.DeliveryMode = v
	}
	if cfg.DeliveryMode != "callback" && cfg.DeliveryMode != "batch" {
		problems = append(problems, fmt.Sprintf("%s must be \"callback\" or \"batch\"", envDeliveryMode))
	}
	if cfg.SearchPageCap <= 0 {
		problems = append(problems, fmt.Sprintf("%s must be positive", envSearchPageCap))
	}
	if cfg.DeliveryMaxAttempts <= 0 {
		problems = append(problems, fmt.Sprintf("%s must be positive", envDeliveryMaxAttempts))
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("configuration error: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

func requireString(name string, dst *string, problems *[]string) {
	v := os.Getenv(name)
	if v == "" {
		*problems = append(*problems, name+" is required")
		return
	}
	*dst = v
}

func requireInt(name string, dst *int, problems *[]string) {
	v := os.Getenv(name)
	if v == "" {
		*problems = append(*problems, name+" is required")
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*problems = append(*problems, name+" must be an integer")
		return
	}
	*dst = n
}

func requireInt64(name string, dst *int64, problems *[]string) {
	v := os.Getenv(name)
	if v == "" {
		*problems = append(*problems, name+" is required")
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		*problems = append(*problems, name+" must be an integer")
		return
	}
	*dst = n
}

func optionalInt(name string, dst *int, problems *[]string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*problems = append(*problems, name+" must be an integer")
		return
	}
	*dst = n
}

func optionalDuration(name string, dst *time.Duration, problems *[]string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*problems = append(*problems, name+" must be a duration like \"30s\"")
		return
	}
	*dst = d
}
