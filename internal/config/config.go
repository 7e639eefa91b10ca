package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Backend string

const (
	BackendOllama Backend = "ollama"
	BackendOpenAI Backend = "openai"
	BackendVertex Backend = "vertex"
	BackendMock   Backend = "mock"
)

type CatalogSource string

const (
	CatalogEmbedded  CatalogSource = "embedded"
	CatalogFile      CatalogSource = "file"
	CatalogFirestore CatalogSource = "firestore"
)

type Config struct {
	Port string

	LLM LLMConfig

	GCPProjectID string
	GCPLocation  string

	CatalogSource     CatalogSource
	CatalogPath       string
	CatalogCollection string

	// Local capability flags reported by /api/status.
	VoiceRecognition bool
	VoiceSynthesis   bool
	MeterInterval    time.Duration

	LogLevel  string
	LogFormat string
}

type LLMConfig struct {
	Backend       Backend
	BaseURL       string
	Model         string
	ModelFamily   string
	APIKey        string
	ProbeTimeout  time.Duration
	ChatTimeout   time.Duration
	StatusTimeout time.Duration
}

// New returns a viper instance with the FRIDAY_ env prefix and every default set.
// Callers may bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("FRIDAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("llm.backend", string(BackendOllama))
	v.SetDefault("llm.base_url", "http://localhost:11434")
	v.SetDefault("llm.model", "qwen2.5")
	v.SetDefault("llm.model_family", "qwen")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.probe_timeout", time.Second)
	v.SetDefault("llm.chat_timeout", 30*time.Second)
	v.SetDefault("llm.status_timeout", 2*time.Second)
	v.SetDefault("gcp.project", "")
	v.SetDefault("gcp.location", "us-central1")
	v.SetDefault("catalog.source", string(CatalogEmbedded))
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.collection", "features")
	v.SetDefault("voice.recognition", true)
	v.SetDefault("voice.synthesis", true)
	v.SetDefault("voice.meter_interval", 16*time.Millisecond)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	return v
}

// Load reads .env (when present), an optional config file and the environment,
// then validates the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	// Existing environment variables win over .env entries.
	_ = godotenv.Load()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Port: v.GetString("port"),

		LLM: LLMConfig{
			Backend:       Backend(strings.ToLower(v.GetString("llm.backend"))),
			BaseURL:       v.GetString("llm.base_url"),
			Model:         v.GetString("llm.model"),
			ModelFamily:   v.GetString("llm.model_family"),
			APIKey:        v.GetString("llm.api_key"),
			ProbeTimeout:  v.GetDuration("llm.probe_timeout"),
			ChatTimeout:   v.GetDuration("llm.chat_timeout"),
			StatusTimeout: v.GetDuration("llm.status_timeout"),
		},

		GCPProjectID: v.GetString("gcp.project"),
		GCPLocation:  v.GetString("gcp.location"),

		CatalogSource:     CatalogSource(strings.ToLower(v.GetString("catalog.source"))),
		CatalogPath:       v.GetString("catalog.path"),
		CatalogCollection: v.GetString("catalog.collection"),

		VoiceRecognition: v.GetBool("voice.recognition"),
		VoiceSynthesis:   v.GetBool("voice.synthesis"),
		MeterInterval:    v.GetDuration("voice.meter_interval"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Backend {
	case BackendOllama, BackendOpenAI, BackendMock:
	case BackendVertex:
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New("gcp.project must be set for the vertex backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm.backend %q", c.LLM.Backend))
	}

	switch c.CatalogSource {
	case CatalogEmbedded:
	case CatalogFile:
		if c.CatalogPath == "" {
			errs = append(errs, errors.New("catalog.path must be set for the file catalog"))
		}
	case CatalogFirestore:
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New("gcp.project must be set for the firestore catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog.source %q", c.CatalogSource))
	}

	if c.LLM.ProbeTimeout <= 0 || c.LLM.ChatTimeout <= 0 || c.LLM.StatusTimeout <= 0 {
		errs = append(errs, errors.New("llm timeouts must be positive"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port must be set"))
	}

	return errors.Join(errs...)
}
