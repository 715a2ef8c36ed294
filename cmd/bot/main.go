// Package main is the entry point for PancyGuard Go.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyGuardGo/internal/commands"
	"github.com/PancyStudios/PancyGuardGo/internal/commands/utils"
	"github.com/PancyStudios/PancyGuardGo/internal/events"
	"github.com/PancyStudios/PancyGuardGo/pkg/antinuke"
	"github.com/PancyStudios/PancyGuardGo/pkg/config"
	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/metrics"
	"github.com/PancyStudios/PancyGuardGo/pkg/mqtt"
	"github.com/PancyStudios/PancyGuardGo/pkg/permissions"
	"github.com/PancyStudios/PancyGuardGo/pkg/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando PancyGuard Go %s (%s)...", config.Version, cfg.Environment), "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
	})

	// Initialize database. A failed connection keeps retrying in the background.
	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Error(fmt.Sprintf("Error conectando a la base de datos: %v", err), "Main")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.EnsureIndexes(ctx); err != nil {
			logger.Warn(fmt.Sprintf("No se pudieron crear los índices: %v", err), "Main")
		}
		cancel()
	}
	defer func() {
		if err := db.Disconnect(); err != nil {
			logger.Warn(fmt.Sprintf("Error al desconectar la base de datos: %v", err), "Main")
		}
	}()

	// Stores
	policies := database.NewPolicyStore(db, cfg.PolicyCacheTTL)
	violations := database.NewViolationStore(db)
	confinements := database.NewConfinementStore(db)
	grantStore := database.NewGrantStore(db)
	staffStore := database.NewStaffStore(db)
	filters := database.NewFilterStore(db, cfg.PolicyCacheTTL)
	mongoCounters := database.NewCounterStore(db)

	var counters antinuke.CounterStore = mongoCounters
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Warn(fmt.Sprintf("Redis no disponible, los contadores se guardarán en MongoDB: %v", err), "Main")
		} else {
			counters = database.NewRedisCounterStore(rdb, "pancyguard")
			defer rdb.Close()
			logger.Success("Contadores AntiNuke en Redis", "Main")
		}
	}

	// Metrics
	var recorder *metrics.Recorder
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewRecorder(reg)
		metricsHandler = metrics.Handler(reg)
	}

	// Initialize MQTT
	mqttClientID := "pancyguard"
	if !cfg.IsProd() {
		mqttClientID = "pancyguard_canary"
	}
	mqttClient := mqtt.Init(mqtt.Options{
		Host:     cfg.MQTTHost,
		Port:     cfg.MQTTPort,
		Username: cfg.MQTTUser,
		Password: cfg.MQTTPassword,
		ClientID: mqttClientID,
		Prefix:   cfg.MQTTTopicPrefix,
	})
	defer mqttClient.Destroy()

	bus := mqtt.NewBus(mqttClient, mqttClient.Prefix(), 256)
	defer bus.Close()

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Anti-nuke core
	guard := discord.NewGuard(discordClient.Session)
	notifier := discord.NewNotifier(discordClient.Session)
	punisher := antinuke.NewPunisher(guard, violations, notifier, confinements)
	engine := antinuke.NewEngine(policies, counters, violations, punisher,
		antinuke.WithObservers(recorder, bus),
		antinuke.WithNotifier(notifier),
		antinuke.WithOwners(guard),
	)

	// Permission model
	resolver := permissions.NewResolver(grantStore, staffStore)
	discordClient.Access = resolver
	discordClient.Metrics = recorder

	mqttClient.On("antinuke/status", antinukeStatusHandler(engine))

	// Register commands using the new commands package
	commands.RegisterAll(discordClient, commands.Deps{
		AntiNuke: engine,
		Grants:   permissions.NewGrantManager(grantStore),
		Staff:    permissions.NewStaffManager(staffStore),
		Auth:     resolver,
		Guard:    guard,
		Status: utils.Deps{
			Policies: policies,
			Broker:   mqttClient,
		},
	})

	// Register events using the new events package
	registry := events.RegisterAll(discordClient, events.Deps{
		Engine:        engine,
		Guard:         guard,
		Access:        resolver,
		Filters:       filters,
		Confinements:  confinements,
		Metrics:       recorder,
		AuditWindow:   cfg.AuditLogWindow,
		SweepInterval: cfg.ConfinementSweepInterval,
		FilterEnabled: cfg.FilterEnabled,
		GuildsWebhook: cfg.GuildsWebhook,
	})
	defer registry.Stop()

	// Retention of the violation log and the Mongo counters
	retention := database.NewRetention(cfg.RetentionWindow(), map[string]database.Pruner{
		"violations": violations,
		"counters":   mongoCounters,
	})
	retention.Start(cfg.RetentionInterval)
	defer retention.Stop()

	// Initialize web server
	webServer, err := web.Init(web.Options{
		WebhookURL:   cfg.LogsWebServerHook,
		APIKey:       cfg.APIKey,
		RateLimit:    cfg.APIRateLimit,
		RateBurst:    cfg.APIRateBurst,
		AllowedHosts: cfg.AllowedHosts,
	})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creando el servidor web: %v", err), "Main")
		os.Exit(1)
	}
	web.SetupAPIRoutes(webServer, web.Dependencies{
		Status:   runtimeStatus{client: discordClient, db: db},
		AntiNuke: engine,
		Metrics:  metricsHandler,
	})
	webServer.StartAsync(cfg.Port)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		if err := discordClient.Stop(); err != nil {
			logger.Warn(fmt.Sprintf("Error al cerrar la sesión de Discord: %v", err), "Main")
		}
	}()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if recorder != nil {
		errors.Go("write-queue-metrics", func() {
			watchWriteQueue(watchCtx, db, recorder, 15*time.Second)
		})
	}

	logger.Success("PancyGuard Go iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando PancyGuard Go...", "Main")
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
