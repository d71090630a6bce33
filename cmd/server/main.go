package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"wiki-identity-bridge/internal/account"
	accountrepo "wiki-identity-bridge/internal/account/repository"
	bindingrepo "wiki-identity-bridge/internal/binding/repository"
	"wiki-identity-bridge/internal/config"
	"wiki-identity-bridge/internal/db"
	"wiki-identity-bridge/internal/equivalence"
	equivhandler "wiki-identity-bridge/internal/equivalence/handler"
	equivrepo "wiki-identity-bridge/internal/equivalence/repository"
	equivservice "wiki-identity-bridge/internal/equivalence/service"
	healthhandler "wiki-identity-bridge/internal/health/handler"
	identityhandler "wiki-identity-bridge/internal/identity/handler"
	identityservice "wiki-identity-bridge/internal/identity/service"
	"wiki-identity-bridge/internal/provider"
	"wiki-identity-bridge/internal/server"
	"wiki-identity-bridge/internal/telemetry"
	telemetryotel "wiki-identity-bridge/internal/telemetry/otel"
	"wiki-identity-bridge/internal/telemetry/producer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "wiki-identity-bridge", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	otel.SetTracerProvider(providers.TracerProvider)
	otel.SetMeterProvider(providers.MeterProvider)

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	accounts := accountrepo.NewPostgresRepository(conn)
	bindings := bindingrepo.NewPostgresRepository(conn)
	equiv := equivrepo.NewPostgresRepository(conn)

	normalizer := equivalence.NewNormalizer()
	canonical := account.NewCanonicalizer()
	usernames := equivservice.NewService(canonical, accounts, equiv, normalizer)

	frontend := provider.NewFrontendClient(cfg.ProviderPublicURL)
	admin := provider.NewAdminClient(cfg.ProviderAdminURL)

	var emitters []telemetry.EventEmitter
	emitters = append(emitters, telemetryotel.NewEventEmitter(providers.LoggerProvider))
	kafkaProducer := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.KafkaTopic)
	if kafkaProducer != nil {
		defer kafkaProducer.Close()
		emitters = append(emitters, kafkaProducer)
		log.Printf("auth events: kafka enabled topic=%s", cfg.KafkaTopic)
	}
	events := telemetry.MultiEmitter(emitters...)

	bridge := identityservice.NewService(
		bindings, accounts, frontend, admin, usernames,
		cfg.ProviderPublicURL, cfg.AutoCreateAccounts, events,
	)

	router := server.NewRouter(server.Deps{
		Identity:  identityhandler.NewHandler(bridge, frontend, cfg.ProviderUIURL),
		Usability: equivhandler.NewHandler(usernames),
		Health:    healthhandler.NewHandler(conn),
		Session:   server.SessionMiddleware(frontend, bindings, cfg.ProviderPublicURL, cfg.ProviderCookieName),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async event emits drain before the providers go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
