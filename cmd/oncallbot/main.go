// @title         oncallbot ops API
// @version       0.1.0
// @description   Health checks plus read only views over channel links and the default on-call set

// Command oncallbot answers "who is on call" in Slack from PagerDuty schedules
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "oncallbot/docs"
	"oncallbot/internal/adapters/slack"
	"oncallbot/internal/modkit"
	"oncallbot/internal/modkit/module"
	"oncallbot/internal/modkit/repokit"
	"oncallbot/internal/platform/config"
	"oncallbot/internal/platform/logger"
	"oncallbot/internal/platform/store"

	botmod "oncallbot/internal/services/bot/module"
	botsvc "oncallbot/internal/services/bot/service"
	dirmod "oncallbot/internal/services/directory/module"
	linksdom "oncallbot/internal/services/links/domain"
	linksmod "oncallbot/internal/services/links/module"
	oncallmod "oncallbot/internal/services/oncall/module"
)

func main() {
	root := config.New()
	slackCfg := root.Prefix("SLACK_")
	storeCfg := root.Prefix("STORE_")
	opsCfg := root.Prefix("OPS_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// open the link store (sqlite file by default, postgres when asked)
	driver := store.Driver(storeCfg.MayEnum("DRIVER", string(store.DriverSQLite), string(store.DriverSQLite), string(store.DriverPostgres)))
	sc := store.Config{AppName: "oncallbot", Driver: driver}
	switch driver {
	case store.DriverPostgres:
		sc.PG = store.PGConfig{
			URL:         storeCfg.MustString("PG_URL"),
			MaxConns:    int32(storeCfg.MayInt("PG_MAX_CONNS", 4)),
			SlowQueryMs: storeCfg.MayInt("PG_SLOW_MS", 500),
			LogSQL:      storeCfg.MayBool("PG_LOG_SQL", false),
		}
	default:
		sc.SQLite = store.SQLiteConfig{
			Path:        storeCfg.MayString("SQLITE_PATH", "oncall.db"),
			SlowQueryMs: storeCfg.MayInt("SQLITE_SLOW_MS", 200),
			LogSQL:      storeCfg.MayBool("SQLITE_LOG_SQL", false),
		}
	}
	st, err := store.Open(ctx, sc, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	deps := modkit.Deps{
		Log:    *l,
		Cfg:    root,
		DB:     st.DB,
		Driver: st.Driver,
	}

	chat := slack.NewClient(slack.Options{
		BaseURL:   slackCfg.MayURL("BASE_URL", "https://slack.com/api"),
		BotToken:  slackCfg.MustString("BOT_TOKEN"),
		AppToken:  slackCfg.MustString("APP_TOKEN"),
		Username:  slackCfg.MayString("BOT_NAME", "oncall"),
		IconEmoji: slackCfg.MayString("EMOJI", ":pager:"),
	})
	self, err := chat.AuthTest(ctx)
	if err != nil {
		l.Panic().Err(err).Msg("slack auth.test failed")
	}
	l.Info().Str("bot_user", self.UserID).Str("team", self.Team).Msg("slack identity")

	links := linksmod.New(deps)
	if err := links.Start(ctx); err != nil {
		l.Panic().Err(err).Msg("links schema bootstrap failed")
	}
	linkPort := module.MustPortsOf[linksdom.Port](links)

	dir := dirmod.New(deps, chat)
	oncall := oncallmod.New(deps, linkPort, nil)
	ocPorts := module.MustPortsOf[oncallmod.Ports](oncall)

	bot := botmod.New(deps, botsvc.Deps{
		Chat:      chat,
		Directory: module.MustPortsOf[dirmod.Ports](dir).Directory,
		Resolver:  ocPorts.Resolver,
		Engine:    ocPorts.Engine,
		Links:     linkPort,
	}, self)

	warm(ctx, l, dir, bot)

	if addr := opsCfg.MayString("ADDR", ":8080"); addr != "" {
		srv := newOpsServer(opsOptions{Addr: addr, Swagger: opsCfg.MayBool("SWAGGER", true)}, st, links, oncall)
		go func() {
			if err := srv.Run(ctx); err != nil {
				l.Error().Err(err).Msg("ops server stopped")
			}
		}()
	}

	sm := slack.NewSocketMode(chat, module.MustPortsOf[botmod.Ports](bot).Handler)
	l.Info().Msg("oncallbot listening for events")
	if err := sm.Run(ctx); err != nil {
		l.Error().Err(err).Msg("socket mode stopped")
	}
	l.Info().Msg("oncallbot stopped")
}

// warm loads the directory and greets the default on-call set
// failures here are logged; lookups populate lazily later
func warm(ctx context.Context, l *logger.Logger, dir *dirmod.Module, bot *botmod.Module) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := dir.Warm(ctx); err != nil {
		l.Warn().Err(err).Msg("directory warm-up failed")
		return
	}
	if err := bot.Welcome(ctx); err != nil {
		l.Warn().Err(err).Msg("welcome message failed")
	}
}
