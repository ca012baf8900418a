package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/VertexInfotech/SupportFlow/internal/api"
	"github.com/VertexInfotech/SupportFlow/internal/flow"
	"github.com/VertexInfotech/SupportFlow/internal/lockfile"
	"github.com/VertexInfotech/SupportFlow/internal/store"
	"github.com/VertexInfotech/SupportFlow/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for SupportFlow state data
	DefaultStateDir = "/var/lib/supportflow"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "supportflow.db"
)

// Config holds environment configuration
type Config struct {
	SessionDSN     string
	StateDir       string
	APIAddr        string
	WhatsAppNumber string
	ContactPhone   string
	ContactEmail   string
	Debug          bool
}

func main() {
	config := loadEnvironmentConfig()
	initializeLogger(config.Debug)

	flags := parseCommandLineFlags(config)

	st, lock, err := buildSessionStore(flags)
	if err != nil {
		slog.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	if lock != nil {
		defer lock.Release()
	}

	engine, err := flow.New(
		flow.WithWhatsAppNumber(*flags.whatsAppNumber),
		flow.WithContactPhone(*flags.contactPhone),
		flow.WithContactEmail(*flags.contactEmail),
	)
	if err != nil {
		// A dangling state reference or missing translation lands here.
		slog.Error("engine configuration invalid, refusing to serve", "error", err)
		os.Exit(1)
	}

	server := api.NewServer(engine, st, api.WithAddr(*flags.apiAddr))
	slog.Info("bootstrapping SupportFlow", "addr", *flags.apiAddr, "store", store.DetectDSNType(*flags.sessionDSN))
	if err := server.Run(); err != nil {
		slog.Error("SupportFlow failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("SupportFlow exited successfully")
}

// initializeLogger sets up structured logging
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	config := Config{
		SessionDSN:     os.Getenv("SESSION_DSN"),
		StateDir:       util.GetenvDefault("SUPPORTFLOW_STATE_DIR", DefaultStateDir),
		APIAddr:        util.GetenvDefault("API_ADDR", api.DefaultAddr),
		WhatsAppNumber: util.GetenvDefault("WHATSAPP_NUMBER", flow.DefaultWhatsAppNumber),
		ContactPhone:   util.GetenvDefault("CONTACT_PHONE", flow.DefaultContactPhone),
		ContactEmail:   util.GetenvDefault("CONTACT_EMAIL", flow.DefaultContactEmail),
		Debug:          util.ParseBoolEnv("SUPPORTFLOW_DEBUG", false),
	}

	slog.Debug("environment variables loaded",
		"SESSION_DSN_SET", config.SessionDSN != "",
		"SUPPORTFLOW_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr)

	return config
}

// Flags holds command line flag values
type Flags struct {
	stateDir       *string
	sessionDSN     *string
	apiAddr        *string
	whatsAppNumber *string
	contactPhone   *string
	contactEmail   *string
	memory         *bool
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:       flag.String("state-dir", config.StateDir, "state directory for SupportFlow data (overrides $SUPPORTFLOW_STATE_DIR)"),
		sessionDSN:     flag.String("session-dsn", config.SessionDSN, "session store DSN: redis://, postgres://, or SQLite path (overrides $SESSION_DSN)"),
		apiAddr:        flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		whatsAppNumber: flag.String("whatsapp-number", config.WhatsAppNumber, "company WhatsApp number for booking deep links (overrides $WHATSAPP_NUMBER)"),
		contactPhone:   flag.String("contact-phone", config.ContactPhone, "phone number shown by the call-us option (overrides $CONTACT_PHONE)"),
		contactEmail:   flag.String("contact-email", config.ContactEmail, "address shown by the email-us option (overrides $CONTACT_EMAIL)"),
		memory:         flag.Bool("memory-store", false, "keep server-held sessions in memory only"),
	}
	flag.Parse()

	// Default to SQLite in the state directory when no DSN is given.
	if *flags.sessionDSN == "" && !*flags.memory {
		*flags.sessionDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("no session DSN provided, defaulting to SQLite", "sqlite_path", *flags.sessionDSN)
	}

	return flags
}

// buildSessionStore selects a session store backend from the DSN. SQLite
// additionally takes the state directory lock, since two instances must not
// share one database file.
func buildSessionStore(flags Flags) (store.Store, *lockfile.Lock, error) {
	if *flags.memory || *flags.sessionDSN == "" {
		return store.NewInMemoryStore(), nil, nil
	}

	switch store.DetectDSNType(*flags.sessionDSN) {
	case "redis":
		st, err := store.NewRedisStore(store.WithRedisURL(*flags.sessionDSN))
		return st, nil, err
	case "postgres":
		st, err := store.NewPostgresStore(store.WithPostgresDSN(*flags.sessionDSN))
		return st, nil, err
	default:
		lock, err := lockfile.AcquireLock(filepath.Dir(*flags.sessionDSN))
		if err != nil {
			return nil, nil, err
		}
		st, err := store.NewSQLiteStore(store.WithSQLiteDSN(*flags.sessionDSN))
		if err != nil {
			lock.Release()
			return nil, nil, err
		}
		return st, lock, nil
	}
}
