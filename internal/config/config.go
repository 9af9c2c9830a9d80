package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Wizard    WizardConfig    `mapstructure:"wizard"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	LLM       LLMConfig       `mapstructure:"llm"`
	UI        UIConfig        `mapstructure:"ui"`
	Log       LogConfig       `mapstructure:"log"`
}

// CatalogConfig holds catalog view settings.
type CatalogConfig struct {
	PageSize int    `mapstructure:"page_size"`
	Layout   string `mapstructure:"layout"`
	SeedFile string `mapstructure:"seed_file"`
}

// WizardConfig selects the registration wizard variant.
type WizardConfig struct {
	UseCase     string        `mapstructure:"use_case"`
	SearchDelay time.Duration `mapstructure:"search_delay"`
}

// AssistantConfig selects the chat backend.
type AssistantConfig struct {
	Mode       string        `mapstructure:"mode"`
	ReplyDelay time.Duration `mapstructure:"reply_delay"`
	TableFile  string        `mapstructure:"table_file"`
}

// LLMConfig holds provider settings.
type LLMConfig struct {
	Provider  string `mapstructure:"provider"`
	APIKeyEnv string `mapstructure:"api_key_env"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme string `mapstructure:"theme"`
}

// LogConfig controls the file logger. An empty file disables logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

const (
	AssistantStatic = "static"
	AssistantLLM    = "llm"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Catalog:   CatalogConfig{PageSize: 6, Layout: "grid"},
		Wizard:    WizardConfig{UseCase: "register", SearchDelay: 400 * time.Millisecond},
		Assistant: AssistantConfig{Mode: AssistantStatic, ReplyDelay: 800 * time.Millisecond},
		LLM:       LLMConfig{Provider: "gemini", APIKeyEnv: "GEMINI_API_KEY", Model: "gemini-2.5-flash"},
		UI:        UIConfig{Theme: ThemeDark},
		Log:       LogConfig{Level: "info"},
	}
}

// Path is the config file location: BUDREGISTRY_CONFIG or
// $HOME/.config/budregistry/config.toml.
func Path() string {
	if p := os.Getenv("BUDREGISTRY_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "budregistry", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix
// BUDREGISTRY_. Out-of-range values fall back to defaults.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("BUDREGISTRY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return normalize(c), nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("catalog.page_size", d.Catalog.PageSize)
	v.SetDefault("catalog.layout", d.Catalog.Layout)
	v.SetDefault("catalog.seed_file", d.Catalog.SeedFile)
	v.SetDefault("wizard.use_case", d.Wizard.UseCase)
	v.SetDefault("wizard.search_delay", d.Wizard.SearchDelay)
	v.SetDefault("assistant.mode", d.Assistant.Mode)
	v.SetDefault("assistant.reply_delay", d.Assistant.ReplyDelay)
	v.SetDefault("assistant.table_file", d.Assistant.TableFile)
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.api_key_env", d.LLM.APIKeyEnv)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

func normalize(c Config) Config {
	d := Default()
	switch c.Catalog.PageSize {
	case 6, 12, 24:
	default:
		c.Catalog.PageSize = d.Catalog.PageSize
	}
	c.Catalog.Layout = strings.ToLower(strings.TrimSpace(c.Catalog.Layout))
	if c.Catalog.Layout != "grid" && c.Catalog.Layout != "list" {
		c.Catalog.Layout = d.Catalog.Layout
	}
	c.Wizard.UseCase = strings.ToLower(strings.TrimSpace(c.Wizard.UseCase))
	switch c.Wizard.UseCase {
	case "register", "empty-search", "require-markets":
	default:
		c.Wizard.UseCase = d.Wizard.UseCase
	}
	if c.Wizard.SearchDelay < 0 {
		c.Wizard.SearchDelay = 0
	}
	c.Assistant.Mode = strings.ToLower(strings.TrimSpace(c.Assistant.Mode))
	if c.Assistant.Mode != AssistantStatic && c.Assistant.Mode != AssistantLLM {
		c.Assistant.Mode = d.Assistant.Mode
	}
	if c.Assistant.ReplyDelay < 0 {
		c.Assistant.ReplyDelay = 0
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = d.LLM.Provider
	}
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	if c.UI.Theme != ThemeDark && c.UI.Theme != ThemeLight {
		c.UI.Theme = d.UI.Theme
	}
	return c
}

// Save writes the provided config to disk, creating the config directory if needed.
// The API key is stored in plain text in the config file; prefer env vars or
// the key store.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("catalog.page_size", cfg.Catalog.PageSize)
	v.Set("catalog.layout", cfg.Catalog.Layout)
	v.Set("catalog.seed_file", cfg.Catalog.SeedFile)
	v.Set("wizard.use_case", cfg.Wizard.UseCase)
	v.Set("wizard.search_delay", cfg.Wizard.SearchDelay.String())
	v.Set("assistant.mode", cfg.Assistant.Mode)
	v.Set("assistant.reply_delay", cfg.Assistant.ReplyDelay.String())
	v.Set("assistant.table_file", cfg.Assistant.TableFile)
	v.Set("llm.provider", cfg.LLM.Provider)
	v.Set("llm.api_key_env", cfg.LLM.APIKeyEnv)
	v.Set("llm.api_key", cfg.LLM.APIKey)
	v.Set("llm.model", cfg.LLM.Model)
	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
