// cmd/dbcheck/main.go
// Checks that the configured PostgreSQL and Redis are reachable and the
// discovery schema is in place

package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/imadgeboyega/fitmatch-backend/internal/common/database"
	"github.com/imadgeboyega/fitmatch-backend/internal/common/logger"
	"github.com/imadgeboyega/fitmatch-backend/internal/config"
)

var requiredTables = []string{"users", "likes", "matches", "blocks", "user_signals"}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Logging)

	if envErr != nil {
		log.Warn().Err(envErr).Msg("⚠️  No .env file found, using environment variables")
	} else {
		log.Info().Msg("✅ .env loaded successfully!")
	}

	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Can't reach database")
	}
	defer db.Close()
	log.Info().Msg("✅ Connected to database")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	missing := 0
	for _, table := range requiredTables {
		var exists bool
		err := db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)`, table)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to inspect schema")
		}
		if !exists {
			missing++
			log.Warn().Str("table", table).Msg("⚠️  Table missing, run the API once to apply migrations")
		}
	}
	if missing == 0 {
		log.Info().Int("tables", len(requiredTables)).Msg("✅ Discovery schema present")
	}

	redisClient, err := database.NewRedisClientFromURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Can't reach Redis")
	}
	defer redisClient.Close()
	log.Info().Msg("✅ Connected to Redis")

	if missing > 0 {
		os.Exit(1)
	}
}
