package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Get returns the value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv loads .env into the environment. A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

type Server struct {
	Port        string
	RouteStore  string
	DatabaseURL string

	TfLURL    string
	TfLAPIKey string

	RedisAddress  string
	RedisPassword string
	RedisDatabase int
	SequenceTTL   time.Duration

	NATSURL string

	HTTPTimeout time.Duration
	LogLevel    string
	LogPretty   bool
}

// LoadServer reads the backend API configuration from the environment.
func LoadServer() (*Server, error) {
	LoadDotEnv()

	cfg := &Server{
		Port:          Get("PORT", "8080"),
		RouteStore:    strings.ToLower(Get("ROUTE_STORE", StorePostgres)),
		DatabaseURL:   Get("DATABASE_URL", ""),
		TfLURL:        strings.TrimRight(Get("TFL_URL", "https://api.tfl.gov.uk"), "/"),
		TfLAPIKey:     Get("TFL_API_KEY", ""),
		RedisAddress:  Get("REDIS_ADDRESS", ""),
		RedisPassword: Get("REDIS_PASSWORD", ""),
		NATSURL:       Get("NATS_URL", ""),
		LogLevel:      Get("LOG_LEVEL", "info"),
		LogPretty:     parseBool(Get("LOG_PRETTY", "")),
	}

	switch cfg.RouteStore {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when ROUTE_STORE=postgres")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("invalid ROUTE_STORE: %q", cfg.RouteStore)
	}

	if _, err := parseBaseURL("TFL_URL", cfg.TfLURL); err != nil {
		return nil, err
	}

	db, err := intVar("REDIS_DATABASE", 0, 0)
	if err != nil {
		return nil, err
	}
	cfg.RedisDatabase = db

	ttl, err := intVar("SEQUENCE_CACHE_TTL_SECONDS", 300, 1)
	if err != nil {
		return nil, err
	}
	cfg.SequenceTTL = time.Duration(ttl) * time.Second

	timeout, err := intVar("HTTP_TIMEOUT_SECONDS", 15, 1)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = time.Duration(timeout) * time.Second

	return cfg, nil
}

type Client struct {
	APIURL      string
	UserUUID    string
	UserEmail   string
	HTTPTimeout time.Duration
	LogLevel    string
}

// LoadClient reads the command-line client configuration. The API base URL
// is required and validated here so a bad value fails at startup.
func LoadClient() (*Client, error) {
	LoadDotEnv()

	cfg := &Client{
		APIURL:    Get("BUSSD_API_URL", ""),
		UserUUID:  Get("BUSSD_USER_UUID", ""),
		UserEmail: Get("BUSSD_USER_EMAIL", ""),
		LogLevel:  Get("LOG_LEVEL", "warn"),
	}

	if cfg.APIURL == "" {
		return nil, errors.New("BUSSD_API_URL is required")
	}
	if _, err := parseBaseURL("BUSSD_API_URL", cfg.APIURL); err != nil {
		return nil, err
	}

	timeout, err := intVar("HTTP_TIMEOUT_SECONDS", 15, 1)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = time.Duration(timeout) * time.Second

	return cfg, nil
}

func parseBaseURL(name, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid %s: %q must be an absolute http(s) URL", name, raw)
	}
	return u, nil
}

func intVar(name string, fallback, minimum int) (int, error) {
	v := Get(name, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < minimum {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return n, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}
