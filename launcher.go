package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/Seklfreak/starlight/cache"
	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/logging"
	"github.com/Seklfreak/starlight/metrics"
	"github.com/Seklfreak/starlight/migrations"
	"github.com/Seklfreak/starlight/models"
	"github.com/Seklfreak/starlight/modules"
	"github.com/Seklfreak/starlight/modules/plugins/boards"
	"github.com/Seklfreak/starlight/ratelimits"
	"github.com/Seklfreak/starlight/rest"
	"github.com/Seklfreak/starlight/version"
	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/raven-go"
	"github.com/go-redis/redis"
	"github.com/kz/discordrus"
	"github.com/sirupsen/logrus"
)

// Entrypoint
func main() {
	log := logrus.New()
	log.Out = os.Stdout
	log.Level = logrus.InfoLevel
	log.Formatter = &logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339}
	log.Hooks = make(logrus.LevelHooks)
	cache.SetLogger(log)
	launcherLog := log.WithField("module", "launcher")

	// Read config
	helpers.LoadConfig("config.json")

	if level, err := logrus.ParseLevel(helpers.ConfigString("logging.level", "info")); err == nil {
		log.Level = level
	} else {
		launcherLog.WithError(err).Warn("unknown log level, using info")
	}

	if path := helpers.ConfigString("logging.jsonfile", ""); path != "" {
		fileHook, err := logging.NewLogrusFileHook(path, log.Level)
		if err != nil {
			launcherLog.WithError(err).Error("logrus file hook failed")
		} else {
			log.Hooks.Add(fileHook)
			defer fileHook.Close()
		}
	}

	if webhook := helpers.ConfigString("logging.discord_webhook", ""); webhook != "" {
		log.Hooks.Add(discordrus.NewHook(
			webhook,
			logrus.ErrorLevel,
			&discordrus.Opts{
				Username:           "Logging",
				DisableTimestamp:   false,
				TimestampFormat:    "Jan 2 15:04:05.00000",
				EnableCustomColors: true,
				CustomLevelColors: &discordrus.LevelColors{
					Error: 13631488,
					Panic: 13631488,
					Fatal: 13631488,
				},
			},
		))
	}

	launcherLog.Info("booting starlight...")
	version.DumpInfo()

	// Call home
	if dsn := helpers.ConfigString("sentry", ""); dsn != "" {
		if err := raven.SetDSN(dsn); err != nil {
			launcherLog.WithError(err).Fatal("setting sentry dsn failed")
		}
		if version.BOT_VERSION != "UNSET" {
			raven.SetRelease(version.BOT_VERSION)
		}
		launcherLog.Info("[SENTRY] Someone picked up the phone \\^-^/")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to DB, boards are kept in memory without one
	var store boards.Store
	if url := helpers.ConfigString("mongodb.url", ""); url != "" {
		err := helpers.ConnectMDB(url, helpers.ConfigString("mongodb.db", "starlight"))
		if err != nil {
			raven.CaptureErrorAndWait(err, nil)
			launcherLog.WithError(err).Fatal("connecting to mongodb failed")
		}
		defer helpers.CloseMDb()
		store = boards.NewMongoStore(log.WithField("module", "boards-store"))
	} else {
		launcherLog.Warn("no mongodb configured, boards will not survive a restart")
		store = boards.NewMemoryStore()
	}

	if err := migrations.Run(); err != nil {
		raven.CaptureErrorAndWait(err, nil)
		launcherLog.WithError(err).Fatal("running migrations failed")
	}

	if address := helpers.ConfigString("redis.address", ""); address != "" {
		launcherLog.Info("connecting to redis...")
		cache.SetRedisClient(redis.NewClient(&redis.Options{
			Addr:     address,
			Password: helpers.ConfigString("redis.password", ""),
			DB:       helpers.ConfigInt("redis.db", 0),
		}))
	}

	// Route discordgo logs into logrus
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		pc, file, line, _ := runtime.Caller(caller)

		files := strings.Split(file, "/")
		file = files[len(files)-1]

		name := runtime.FuncForPC(pc).Name()
		fns := strings.Split(name, ".")
		name = fns[len(fns)-1]

		msg := format
		if strings.Contains(msg, "%") {
			msg = fmt.Sprintf(format, a...)
		}

		entry := log.WithField("module", "discordgo")
		switch msgL {
		case discordgo.LogError:
			entry.Errorf("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogWarning:
			entry.Warnf("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogInformational:
			entry.Infof("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogDebug:
			entry.Debugf("%s:%d:%s() %s", file, line, name, msg)
		}
	}

	discord, err := discordgo.New("Bot " + helpers.ConfigString("discord.token", ""))
	if err != nil {
		launcherLog.WithError(err).Fatal("creating discord session failed")
	}

	discord.Lock()
	discord.Debug = false
	discord.LogLevel = discordgo.LogInformational
	discord.StateEnabled = true
	discord.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent
	discord.Unlock()

	prefix := helpers.ConfigString("prefix", "_")
	platform := boards.NewDiscordPlatform(
		discord,
		log.WithField("module", "boards-discord"),
		uint32(helpers.ConfigInt("boards.breaker_failures", 5)),
	)
	aggregator := boards.NewAggregator(platform, store, store, log.WithField("module", "boards"), boards.AggregatorOptions{
		SuppressGrace: time.Duration(helpers.ConfigInt("boards.suppress_grace", 30)) * time.Second,
		IsCommand:     modules.IsCommand(prefix),
	})
	settings := boards.NewSettings(store, aggregator, log.WithField("module", "boards-settings"))

	bot := &Bot{
		ctx:        ctx,
		prefix:     prefix,
		router:     boards.NewRouter(platform, store, log.WithField("module", "boards-router")),
		aggregator: aggregator,
		plugins: []modules.Plugin{
			boards.NewHandler(models.BoardKindStar, settings, platform),
			boards.NewHandler(models.BoardKindClown, settings, platform),
		},
	}
	bot.AddHandlers(discord)

	go aggregator.Run(ctx)
	go ratelimits.Container.Run(ctx)

	metricsServer := metrics.Init(helpers.ConfigString("metrics.address", "localhost:9090"), log.WithField("module", "metrics"))

	// Open REST API
	restAddress := helpers.ConfigString("rest.address", "localhost:2021")
	restServer := &http.Server{
		Addr:    restAddress,
		Handler: rest.NewService(settings, log.WithField("module", "rest")).Container(),
	}
	go func() {
		if err := restServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			launcherLog.WithError(err).Error("REST API stopped")
		}
	}()
	launcherLog.Info("REST API listening on " + restAddress)

	launcherLog.Info("connecting starlight to discord...")
	if err = discord.Open(); err != nil {
		raven.CaptureErrorAndWait(err, nil)
		launcherLog.WithError(err).Fatal("connecting to discord failed")
	}

	// Wait until the os wants us to shutdown
	runtimeChannel := make(chan os.Signal, 1)
	signal.Notify(runtimeChannel, os.Interrupt, syscall.SIGTERM)
	<-runtimeChannel

	launcherLog.Info("starlight is stopping")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	restServer.Shutdown(shutdownCtx)
	metricsServer.Shutdown(shutdownCtx)

	launcherLog.Info("disconnecting bot discord session...")
	discord.Close()
}
