package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gowrishetty09/bal-driver-sub001/internal/config"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/adapters/driven/api"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/adapters/driven/auth"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/adapters/driven/bm"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/adapters/driven/geo"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/adapters/driven/ws"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/model"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/ports"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/services"
	"github.com/gowrishetty09/bal-driver-sub001/internal/mylogger"
)

func main() {
	driverID := flag.String("driver_id", "", "Driver ID for the realtime subscription")
	driverToken := flag.String("token", "", "Driver bearer token")
	lat := flag.Float64("lat", 43.236, "Initial latitude")
	lng := flag.Float64("lng", 76.886, "Initial longitude")
	flag.Parse()

	if *driverID == "" || *driverToken == "" {
		log.Fatal("Driver ID and token are required")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := mylogger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger.Action("driver_agent_started").Info("Driver agent starting up", "driver_id", *driverID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	bearer := auth.NewBearerProvider(cfg.Auth.JWTSecret)
	bearer.SetToken(*driverToken)

	apiClient := api.New(cfg.API.BaseURL, cfg.API.Timeout, bearer, appLogger)

	var channel ports.RealtimeChannel
	switch cfg.Realtime.Transport {
	case "amqp":
		broker, err := bm.New(ctx, *cfg.RabbitMq, *driverID, appLogger)
		if err != nil {
			log.Fatalf("Failed to connect to broker: %v", err)
		}
		if err := broker.Start(); err != nil {
			log.Fatalf("Failed to start broker consumer: %v", err)
		}
		channel = broker
	default:
		wsChannel := ws.New(ctx, cfg.Realtime.WSURL+"/"+*driverID, bearer, appLogger)
		wsChannel.Start()
		channel = wsChannel
	}
	defer channel.Close()

	reconcilers := make(map[model.JobCategory]*services.Reconciler)
	for _, category := range []model.JobCategory{model.CategoryActive, model.CategoryUpcoming, model.CategoryHistory} {
		r := services.NewReconciler(category, apiClient, channel, appLogger)
		if err := r.Start(ctx); err != nil {
			appLogger.Action("initial_load").Error("snapshot load failed", err, "category", string(category))
		}
		defer r.Close()
		reconcilers[category] = r
	}

	location := geo.NewSimulator(*lat, *lng)
	telemetry := services.NewTelemetryScheduler(apiClient, bearer, location, appLogger,
		cfg.Telemetry.NormalInterval, cfg.Telemetry.HighFrequencyInterval)
	if err := telemetry.Start(ctx); err != nil {
		appLogger.Action("telemetry_start").Error("telemetry not started", err)
	}
	defer telemetry.Stop()

	// Raise the telemetry cadence while a ride is underway.
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				telemetry.SetMode(ctx, modeFor(reconcilers[model.CategoryActive].Jobs()))
				appLogger.Action("lists").Debug("list sizes",
					"active", len(reconcilers[model.CategoryActive].Jobs()),
					"upcoming", len(reconcilers[model.CategoryUpcoming].Jobs()),
					"history", len(reconcilers[model.CategoryHistory].Jobs()),
				)
			}
		}
	}()

	<-ctx.Done()
	appLogger.Action("driver_agent_stopped").Info("Gracefully shutting down...")
}

func modeFor(active []model.Job) services.IntervalMode {
	for _, job := range active {
		switch job.Status {
		case model.StatusEnRoute, model.StatusArrived, model.StatusPickedUp:
			return services.ModeHighFrequency
		}
	}
	return services.ModeNormal
}
