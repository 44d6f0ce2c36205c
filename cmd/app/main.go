package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"partnerfeed/cmd"
)

func main() {
	configs := getConfigs()

	root, err := cmd.NewCompositionRoot(configs)
	if err != nil {
		log.Fatalf("Failed to build application: %s", err)
	}

	ctx := context.Background()
	if err = root.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %s", err)
	}
	defer root.Stop()

	startWebServer(root, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	// A missing .env file is fine; the environment may carry everything.
	_ = godotenv.Load(".env")

	return cmd.Config{
		HTTPPort: envOrDefault("HTTP_PORT", "8080"),

		Storage: envOrDefault("STORAGE", cmd.StorageInMem),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSslMode:  envOrDefault("DB_SSLMODE", "disable"),

		NatsURL: envOrDefault("NATS_URL", "nats://localhost:4222"),

		RedisAddr:       envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		PositionChannel: envOrDefault("POSITION_CHANNEL", "partnerfeed.position"),
		TrackingEnabled: envBool("TRACKING_ENABLED", true),

		MinWatchInterval:     time.Duration(envInt("WATCH_MIN_INTERVAL_SECONDS", 10)) * time.Second,
		MinDisplacementMeter: envFloat("WATCH_MIN_DISPLACEMENT_METERS", 10),

		SessionSubject: envOrDefault("SESSION_SUBJECT", "demo-partner"),
		SessionGroups:  splitList(envOrDefault("SESSION_GROUPS", "DeliveryPartners")),
		StartSignedIn:  envBool("START_SIGNED_IN", true),
		RequiredGroup:  envOrDefault("REQUIRED_GROUP", "DeliveryPartners"),

		PartnerName:   envOrDefault("PARTNER_NAME", "Demo Partner"),
		SeedOrders:    envInt("SEED_ORDERS", 8),
		BaseLatitude:  envFloat("BASE_LATITUDE", 12.9048),
		BaseLongitude: envFloat("BASE_LONGITUDE", 77.6045),

		FeedRefreshSchedule: envOrDefault("FEED_REFRESH_SCHEDULE", "*/30 * * * * *"),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Fatalf("Invalid boolean for %s: %s", key, value)
	}
	return parsed
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Invalid integer for %s: %s", key, value)
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("Invalid float for %s: %s", key, value)
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func startWebServer(root *cmd.CompositionRoot, port string) {
	e := echo.New()
	root.CreateServer().MountRoutes(e)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			e.Logger.Error(err)
		}
	}()

	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil {
		e.Logger.Info(err)
	}
}
