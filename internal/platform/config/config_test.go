package config

import (
	"testing"
	"time"

	kit "oncallbot/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	slack := New().Prefix("SLACK_")
	if got := slack.key("BOT_TOKEN"); got != "SLACK_BOT_TOKEN" {
		t.Fatalf("key() = %q", got)
	}
	if got := slack.Prefix("X_").key("Y"); got != "SLACK_X_Y" {
		t.Fatalf("nested key() = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_TOKEN", "  xoxb-1 ")
	if got := c.MustString("TOKEN"); got != "xoxb-1" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustURL(t *testing.T) {
	c := New().Prefix("U_")
	t.Setenv("U_BASE", "https://api.pagerduty.com")
	if u := c.MustURL("BASE"); u.Host != "api.pagerduty.com" {
		t.Fatalf("MustURL host = %q", u.Host)
	}
	t.Setenv("U_REL", "/relative")
	kit.MustPanic(t, func() { _ = c.MustURL("REL") })
}

func TestMayURL(t *testing.T) {
	c := New().Prefix("U_")
	if got := c.MayURL("MISSING", "https://slack.com/api"); got != "https://slack.com/api" {
		t.Fatalf("MayURL default = %q", got)
	}
	t.Setenv("U_OK", "http://127.0.0.1:9999/api/")
	if got := c.MayURL("OK", ""); got != "http://127.0.0.1:9999/api" {
		t.Fatalf("MayURL trims slash, got %q", got)
	}
	t.Setenv("U_BAD", "not a url")
	if got := c.MayURL("BAD", "def"); got != "def" {
		t.Fatalf("MayURL bad = %q", got)
	}
}

func TestMayInt_MayBool(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_N", "7")
	t.Setenv("M_BADN", "x")
	t.Setenv("M_B", "true")
	t.Setenv("M_BADB", "maybe")
	if c.MayInt("N", 0) != 7 || c.MayInt("BADN", 3) != 3 || c.MayInt("NONE", 9) != 9 {
		t.Fatalf("MayInt branches wrong")
	}
	if !c.MayBool("B", false) || c.MayBool("BADB", false) || !c.MayBool("NONE", true) {
		t.Fatalf("MayBool branches wrong")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("D_")
	t.Setenv("D_SECS", "600")
	t.Setenv("D_DUR", "90s")
	t.Setenv("D_BAD", "soon")
	if got := c.MayDuration("SECS", 0); got != 10*time.Minute {
		t.Fatalf("bare seconds = %v", got)
	}
	if got := c.MayDuration("DUR", 0); got != 90*time.Second {
		t.Fatalf("duration = %v", got)
	}
	if got := c.MayDuration("BAD", time.Minute); got != time.Minute {
		t.Fatalf("bad duration = %v", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("PD_")
	if got := c.MayCSV("UNSET", []string{"D"}); len(got) != 1 || got[0] != "D" {
		t.Fatalf("unset should give default, got %v", got)
	}
	t.Setenv("PD_IDS", " P1, ,P2 ")
	if got := c.MayCSV("IDS", nil); len(got) != 2 || got[0] != "P1" || got[1] != "P2" {
		t.Fatalf("MayCSV = %v", got)
	}
	t.Setenv("PD_EMPTY", "")
	if got := c.MayCSV("EMPTY", []string{"D"}); got == nil || len(got) != 0 {
		t.Fatalf("set-but-empty should give empty slice, got %v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("STORE_")
	if got := c.MayEnum("DRIVER", "sqlite", "sqlite", "postgres"); got != "sqlite" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("STORE_DRIVER", "Postgres")
	if got := c.MayEnum("DRIVER", "sqlite", "sqlite", "postgres"); got != "postgres" {
		t.Fatalf("MayEnum = %q", got)
	}
	t.Setenv("STORE_DRIVER", "mysql")
	kit.MustPanic(t, func() { _ = c.MayEnum("DRIVER", "sqlite", "sqlite", "postgres") })
}
