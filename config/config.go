package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const defaultFMPBaseURL = "https://financialmodelingprep.com/api/v3"

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL        string
	FMPKey       string
	FMPBaseURL   string
	Port         string
	ProfileDelay time.Duration
	CallBudget   int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; real environment variables win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, relying on environment variables")
	}

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	fmpKey := os.Getenv("FMP_KEY")
	if fmpKey == "" {
		return nil, fmt.Errorf("FMP_KEY environment variable is required")
	}

	baseURL := os.Getenv("FMP_BASE_URL")
	if baseURL == "" {
		baseURL = defaultFMPBaseURL
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Inter-call pause inside one profile backfill run. 200ms keeps a single
	// run under 5 calls/sec. Concurrent runs are not coordinated; see the note
	// on services.ProfileService.
	profileDelay := 200 * time.Millisecond
	if raw := os.Getenv("PROFILE_DELAY_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("PROFILE_DELAY_MS must be a non-negative integer, got %q", raw)
		}
		profileDelay = time.Duration(ms) * time.Millisecond
	}

	// Daily provider call allowance. Exceeding it only raises an exception;
	// calls are never blocked. Zero disables the check.
	callBudget := 250
	if raw := os.Getenv("DAILY_CALL_BUDGET"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("DAILY_CALL_BUDGET must be a non-negative integer, got %q", raw)
		}
		callBudget = n
	}

	return &Config{
		PGURL:        pgURL,
		FMPKey:       fmpKey,
		FMPBaseURL:   baseURL,
		Port:         port,
		ProfileDelay: profileDelay,
		CallBudget:   callBudget,
	}, nil
}
