package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

// Environment keys recognized by FromEnv.
const (
	EnvScheme   = "DB_SCHEME"
	EnvName     = "DB_NAME"
	EnvUser     = "DB_USER"
	EnvPassword = "DB_PASSWORD"
	EnvHost     = "DB_HOST"
	EnvPort     = "DB_PORT"

	EnvAPIKey     = "GOOGLE_API_KEY"
	EnvModel      = "SQLYNX_MODEL"
	EnvEmbedModel = "SQLYNX_EMBED_MODEL"
	EnvIndexDir   = "SQLYNX_INDEX_DIR"
	EnvTopK       = "SQLYNX_TOP_K"
)

const (
	defaultModel      = "gemini-2.0-flash"
	defaultEmbedModel = "gemini-embedding-001"
	defaultTopK       = 5

	keyringService = "sqlynx"
	keyringAPIKey  = "google_api_key"
)

// requiredKeys must all be present before any network attempt is made.
var requiredKeys = []string{EnvScheme, EnvName, EnvUser, EnvPassword, EnvHost}

// FromEnv builds the configuration from the process environment. It returns
// a MissingConfigError naming every absent required key, or an
// UnsupportedSchemeError for a scheme outside the supported set.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(EnvModel, defaultModel)
	v.SetDefault(EnvEmbedModel, defaultEmbedModel)
	v.SetDefault(EnvIndexDir, filepath.Join("storage", "sql_index_data"))
	v.SetDefault(EnvTopK, defaultTopK)

	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingConfigError{Keys: missing}
	}

	scheme := Scheme(strings.ToLower(strings.TrimSpace(v.GetString(EnvScheme))))
	if !scheme.Supported() {
		return nil, &UnsupportedSchemeError{Scheme: string(scheme)}
	}

	cfg := &Config{
		DB: DBConfig{
			Scheme:   scheme,
			Host:     v.GetString(EnvHost),
			Port:     v.GetInt(EnvPort),
			Name:     v.GetString(EnvName),
			User:     v.GetString(EnvUser),
			Password: v.GetString(EnvPassword),
		},
		LLM: LLMConfig{
			APIKey:     v.GetString(EnvAPIKey),
			Model:      v.GetString(EnvModel),
			EmbedModel: v.GetString(EnvEmbedModel),
		},
		IndexDir: v.GetString(EnvIndexDir),
		TopK:     v.GetInt(EnvTopK),
	}

	if cfg.LLM.APIKey == "" {
		// Fall back to the OS keyring for the API key; absence is handled
		// later when the generator is constructed.
		if key, err := keyring.Get(keyringService, keyringAPIKey); err == nil {
			cfg.LLM.APIKey = key
		}
	}

	return cfg, nil
}

// StoreAPIKey saves the Gemini API key in the OS keyring so it does not have
// to live in the environment.
func StoreAPIKey(key string) error {
	return keyring.Set(keyringService, keyringAPIKey, key)
}
