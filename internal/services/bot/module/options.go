package module

import "oncallbot/internal/platform/config"

// Options holds configuration settings for the bot module
type Options struct {
	BotName        string
	TestUser       string
	WelcomeMessage string
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("SLACK_")
	return Options{
		BotName:        sc.MayString("BOT_NAME", "oncall"),
		TestUser:       sc.MayString("TEST_USER", ""),
		WelcomeMessage: sc.MayString("WELCOME_MESSAGE", ""),
	}
}
