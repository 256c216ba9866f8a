package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Cfg struct {
	Database   Database
	Logger     Logger
	OpenAI     OpenAI
	Browser    Browser
	Agent      Agent
	Migrations Migrations
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

type Migrations struct {
	Path string
}

type Logger struct {
	Env   string
	Level string
}

type OpenAI struct {
	KeyAI     string
	Model     string
	MaxTokens int
}

type Browser struct {
	Headless        bool
	BrowsersPath    string
	ActionTimeout   time.Duration
	NavigateTimeout time.Duration
}

// Agent содержит параметры цикла агента и явный каталог данных.
// Каталог данных задается только конфигурацией — коллабораторы хранилища
// не определяют его сами через окружение.
type Agent struct {
	DataDir              string
	StepBudget           int
	MaxConsecutiveErrors int
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
		},
		Logger: Logger{
			Env:   env("ENV", "dev"),
			Level: env("LOG_LEVEL", "info"),
		},
		OpenAI: OpenAI{
			KeyAI:     os.Getenv("OPENAI_API_KEY"),
			Model:     env("OPENAI_MODEL", "gpt-4o-mini"),
			MaxTokens: envInt("OPENAI_MAX_TOKENS", 300),
		},
		Browser: Browser{
			Headless:        envBool("PW_HEADLESS", true),
			BrowsersPath:    env("PLAYWRIGHT_BROWSERS_PATH", ""),
			ActionTimeout:   envDuration("PW_ACTION_TIMEOUT", 5*time.Second),
			NavigateTimeout: envDuration("PW_NAVIGATE_TIMEOUT", 30*time.Second),
		},
		Agent: Agent{
			DataDir:              env("AGENT_DATA_DIR", "./data"),
			StepBudget:           envInt("AGENT_STEP_BUDGET", 5),
			MaxConsecutiveErrors: envInt("AGENT_MAX_CONSECUTIVE_ERRORS", 2),
		},
		Migrations: Migrations{
			Path: env("MIGRATIONS_PATH", "file://migrations"),
		},
	}

	return cfg, nil
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func envBool(key string, defaultValue bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1" || v == "yes"
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
