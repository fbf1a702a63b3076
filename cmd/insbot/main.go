package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/straxovka-go/insbot/internal/api"
	"github.com/straxovka-go/insbot/internal/convo"
	"github.com/straxovka-go/insbot/internal/genai"
	"github.com/straxovka-go/insbot/internal/telegram"
	"github.com/straxovka-go/insbot/internal/util"
)

// WebhookPath is the path Telegram delivers updates to, appended to $DOMAIN.
const WebhookPath = "/webhook"

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Required external identifiers are validated before any module runs
	if err := validateRequiredConfig(flags); err != nil {
		slog.Error("Missing required configuration", "error", err)
		os.Exit(1)
	}

	// Build module options
	tgOpts := buildTelegramOptions(flags)
	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	apiOpts := buildAPIOptions(flags)

	slog.Info("Bootstrapping insbot with configured modules")
	slog.Debug("Module options counts", "telegram", len(tgOpts), "store", len(storeOpts), "genai", len(genaiOpts), "api", len(apiOpts))
	if err := api.Run(tgOpts, storeOpts, genaiOpts, apiOpts); err != nil {
		slog.Error("insbot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("insbot exited successfully")
}

// Config holds environment configuration
type Config struct {
	TelegramToken     string
	OpenRouterKey     string
	Domain            string
	APIAddr           string
	CatalogFile       string
	Model             string
	CompletionTimeout time.Duration
	MaxHistory        int
	MaxConversations  int
	IdleTTL           time.Duration
}

// Flags holds command line flag values
type Flags struct {
	telegramToken     *string
	openRouterKey     *string
	domain            *string
	apiAddr           *string
	catalogFile       *string
	model             *string
	completionTimeout *time.Duration
	maxHistory        *int
	maxConversations  *int
	idleTTL           *time.Duration
}

// initializeLogger sets up structured logging
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)
}

// logLevel derives the log level from $DEBUG; debug is the default and
// DEBUG=false quiets the logger to info for production deployments.
func logLevel() slog.Level {
	if util.ParseBoolEnv("DEBUG", true) {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		OpenRouterKey:     os.Getenv("OPENROUTER_API_KEY"),
		Domain:            os.Getenv("DOMAIN"),
		APIAddr:           os.Getenv("API_ADDR"),
		CatalogFile:       os.Getenv("CATALOG_FILE"),
		Model:             os.Getenv("OPENROUTER_MODEL"),
		CompletionTimeout: util.ParseDurationEnv("COMPLETION_TIMEOUT", genai.DefaultTimeout),
		MaxHistory:        util.ParseIntEnv("MAX_HISTORY", convo.DefaultMaxHistory),
		MaxConversations:  util.ParseIntEnv("MAX_CONVERSATIONS", convo.DefaultMaxConversations),
		IdleTTL:           util.ParseDurationEnv("CONVERSATION_IDLE_TTL", convo.DefaultIdleTTL),
	}

	// Legacy deployments configure the listen port via $PORT
	if config.APIAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			config.APIAddr = ":" + port
			slog.Debug("Using PORT as API address", "api_addr", config.APIAddr)
		}
	}

	slog.Debug("environment variables loaded",
		"TELEGRAM_TOKEN_SET", config.TelegramToken != "",
		"OPENROUTER_API_KEY_SET", config.OpenRouterKey != "",
		"DOMAIN", config.Domain,
		"API_ADDR", config.APIAddr,
		"CATALOG_FILE", config.CatalogFile,
		"OPENROUTER_MODEL", config.Model,
		"COMPLETION_TIMEOUT", config.CompletionTimeout,
		"MAX_HISTORY", config.MaxHistory,
		"MAX_CONVERSATIONS", config.MaxConversations,
		"CONVERSATION_IDLE_TTL", config.IdleTTL)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		telegramToken:     flag.String("telegram-token", config.TelegramToken, "Telegram bot token (overrides $TELEGRAM_TOKEN)"),
		openRouterKey:     flag.String("openrouter-api-key", config.OpenRouterKey, "OpenRouter API key (overrides $OPENROUTER_API_KEY)"),
		domain:            flag.String("domain", config.Domain, "public base URL for webhook registration (overrides $DOMAIN)"),
		apiAddr:           flag.String("api-addr", config.APIAddr, "HTTP listen address (overrides $API_ADDR or $PORT)"),
		catalogFile:       flag.String("catalog-file", config.CatalogFile, "YAML catalog override file (overrides $CATALOG_FILE)"),
		model:             flag.String("model", config.Model, "completion model (overrides $OPENROUTER_MODEL)"),
		completionTimeout: flag.Duration("completion-timeout", config.CompletionTimeout, "completion call timeout (overrides $COMPLETION_TIMEOUT)"),
		maxHistory:        flag.Int("max-history", config.MaxHistory, "max turns kept per conversation (overrides $MAX_HISTORY)"),
		maxConversations:  flag.Int("max-conversations", config.MaxConversations, "max tracked conversations (overrides $MAX_CONVERSATIONS)"),
		idleTTL:           flag.Duration("conversation-idle-ttl", config.IdleTTL, "idle time before a conversation may be evicted (overrides $CONVERSATION_IDLE_TTL)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"telegramTokenSet", *flags.telegramToken != "",
		"openRouterKeySet", *flags.openRouterKey != "",
		"domain", *flags.domain,
		"apiAddr", *flags.apiAddr,
		"catalogFile", *flags.catalogFile,
		"model", *flags.model,
		"completionTimeout", *flags.completionTimeout,
		"maxHistory", *flags.maxHistory,
		"maxConversations", *flags.maxConversations,
		"idleTTL", *flags.idleTTL)

	return flags
}

// validateRequiredConfig fails fast when required external identifiers are absent.
func validateRequiredConfig(flags Flags) error {
	var missing []string
	if *flags.telegramToken == "" {
		missing = append(missing, "TELEGRAM_TOKEN")
	}
	if *flags.openRouterKey == "" {
		missing = append(missing, "OPENROUTER_API_KEY")
	}
	if *flags.domain == "" {
		missing = append(missing, "DOMAIN")
	}
	if len(missing) > 0 {
		return &missingConfigError{vars: missing}
	}
	return nil
}

type missingConfigError struct {
	vars []string
}

func (e *missingConfigError) Error() string {
	return "required configuration not set: " + strings.Join(e.vars, ", ")
}

// buildTelegramOptions constructs Telegram client configuration options
func buildTelegramOptions(flags Flags) []telegram.Option {
	var tgOpts []telegram.Option
	if *flags.telegramToken != "" {
		tgOpts = append(tgOpts, telegram.WithToken(*flags.telegramToken))
	}
	return tgOpts
}

// buildStoreOptions constructs conversation store configuration options
func buildStoreOptions(flags Flags) []convo.Option {
	return []convo.Option{
		convo.WithMaxHistory(*flags.maxHistory),
		convo.WithMaxConversations(*flags.maxConversations),
		convo.WithIdleTTL(*flags.idleTTL),
	}
}

// buildGenAIOptions constructs completion client configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openRouterKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openRouterKey))
	}
	if *flags.model != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.model))
	}
	genaiOpts = append(genaiOpts, genai.WithTimeout(*flags.completionTimeout))
	return genaiOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.domain != "" {
		apiOpts = append(apiOpts, api.WithWebhookURL(strings.TrimRight(*flags.domain, "/")+WebhookPath))
	}
	if *flags.catalogFile != "" {
		apiOpts = append(apiOpts, api.WithCatalogFile(*flags.catalogFile))
	}
	return apiOpts
}
