package profile

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Oracle configuration (OpenAI-compatible protocol)
	// All providers (openai, deepseek, siliconflow, openrouter, ollama) use the same config
	OracleProvider string // Provider identifier
	OracleAPIKey   string // API key, may stay empty for local providers
	OracleBaseURL  string // Base URL (optional, has default per provider)
	OracleModel    string // Model name: gpt-4o-mini, deepseek-chat, etc.
	OracleTimeout  int    // Oracle request timeout in seconds (default: 120)

	// Orchestration configuration
	MemoryWindow       int // Recent memory entries per execution prompt
	MaxConcurrentTasks int // Concurrent orchestrations admitted by the HTTP layer

	Mode    string
	Addr    string
	Port    int
	Version string
}

// Provider default configurations for the oracle. Used when the base URL or
// model is not explicitly set. Kept in sync with the oracle client's own
// per-provider fallbacks.
var oracleProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"siliconflow": {
		BaseURL: "https://api.siliconflow.cn/v1",
		Model:   "Qwen/Qwen2.5-72B-Instruct",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "deepseek/deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads the oracle and orchestration configuration from environment
// variables.
func (p *Profile) FromEnv() {
	p.OracleProvider = getEnvOrDefault("COVEY_ORACLE_PROVIDER", "openai")
	p.OracleAPIKey = getEnvOrDefault("COVEY_ORACLE_API_KEY", "")
	p.OracleBaseURL = getEnvOrDefault("COVEY_ORACLE_BASE_URL", "")
	p.OracleModel = getEnvOrDefault("COVEY_ORACLE_MODEL", "")
	p.OracleTimeout = getEnvOrDefaultInt("COVEY_ORACLE_TIMEOUT_SECONDS", 120)

	p.MemoryWindow = getEnvOrDefaultInt("COVEY_MEMORY_WINDOW", 20)
	p.MaxConcurrentTasks = getEnvOrDefaultInt("COVEY_MAX_CONCURRENT_TASKS", 3)

	if _, ok := oracleProviderDefaults[p.OracleProvider]; !ok {
		slog.Warn("unknown oracle provider, using default: openai", "provider", p.OracleProvider)
		p.OracleProvider = "openai"
	}
	if defaults, ok := oracleProviderDefaults[p.OracleProvider]; ok {
		if p.OracleBaseURL == "" {
			p.OracleBaseURL = defaults.BaseURL
		}
		if p.OracleModel == "" {
			p.OracleModel = defaults.Model
		}
	}
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}
	if p.OracleModel == "" {
		return errors.New("oracle model must be configured")
	}
	if p.OracleTimeout <= 0 {
		p.OracleTimeout = 120
	}
	if p.MemoryWindow < 1 {
		return errors.Errorf("memory window must be at least 1, got %d", p.MemoryWindow)
	}
	if p.MaxConcurrentTasks < 1 {
		return errors.Errorf("max concurrent tasks must be at least 1, got %d", p.MaxConcurrentTasks)
	}

	if p.OracleAPIKey == "" && p.OracleProvider != "ollama" {
		slog.Warn("no oracle API key configured, completion calls will fail", "provider", p.OracleProvider)
	}

	return nil
}
