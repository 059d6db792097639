package module

import (
	"time"

	"oncallbot/internal/platform/config"
)

// Options holds configuration settings for the oncall module
type Options struct {
	BaseURL     string
	Token       string
	ScheduleIDs []string
	FromEmail   string
	CacheTTL    time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	pd := cfg.Prefix("PAGERDUTY_")
	return Options{
		BaseURL:     pd.MayURL("BASE_URL", "https://api.pagerduty.com"),
		Token:       pd.MayString("TOKEN", ""),
		ScheduleIDs: pd.MayCSV("SCHEDULE_IDS", nil),
		FromEmail:   pd.MayString("FROM_EMAIL", ""),
		CacheTTL:    pd.MayDuration("CACHE_INTERVAL", 10*time.Minute),
	}
}
