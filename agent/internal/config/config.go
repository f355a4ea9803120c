package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seawise/seawise/pkg/fouling"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultSampleInterval = 30 * time.Second
	DefaultShipInterval   = 15 * time.Second
	DefaultBufferSize     = 1000
	DefaultIdleSpeedKnots = 0.5
	DefaultGRPCPort       = 50051
	DefaultHTTPPort       = 8080
)

// DateLayout is the format of Vessel.LastCleaned.
const DateLayout = "2006-01-02"

// Config is the top-level configuration for the agent. The server section
// of a shared config file is parsed but not used by the agent binary.
type Config struct {
	Agent  AgentConfig  `yaml:"agent"`
	Server ServerConfig `yaml:"server"`
}

// AgentConfig holds all agent-side settings.
type AgentConfig struct {
	// ServerEndpoint is the gRPC address of seawise-server (host:port).
	ServerEndpoint string `yaml:"server_endpoint"`

	// SampleInterval controls how often each vessel's sensors are polled.
	SampleInterval time.Duration `yaml:"sample_interval"`

	// ShipInterval controls how often buffered snapshots are sent to the server.
	ShipInterval time.Duration `yaml:"ship_interval"`

	// BufferSize is the maximum number of snapshots held in memory when
	// the server is unreachable.
	BufferSize int `yaml:"buffer_size"`

	// Vessels is the fleet this agent reports on.
	Vessels []Vessel `yaml:"vessels"`

	// ServerAuth configures how the agent authenticates to seawise-server.
	ServerAuth AuthConfig `yaml:"server_auth"`
}

// Vessel describes one hull and where its environmental readings come from.
type Vessel struct {
	// ID is a unique, stable identifier (IMO number or fleet code).
	ID string `yaml:"id"`

	// Name is the display name.
	Name string `yaml:"name"`

	// Variant selects the estimator: enhanced (default) | baseline.
	Variant string `yaml:"variant"`

	// LastCleaned is the date of the last hull clean, YYYY-MM-DD.
	// Empty means the hull is treated as freshly cleaned at agent start.
	LastCleaned string `yaml:"last_cleaned"`

	// IdleSpeedKnots is the speed at or below which the vessel counts as idle
	// when the source does not report idle hours itself. Unset means
	// DefaultIdleSpeedKnots; 0 counts only a stopped vessel as idle.
	IdleSpeedKnots *float64 `yaml:"idle_speed_knots"`

	// Source is the sensor feed for this vessel.
	Source Source `yaml:"source"`
}

// IdleSpeed returns the configured idle threshold or the default.
func (v Vessel) IdleSpeed() float64 {
	if v.IdleSpeedKnots == nil {
		return DefaultIdleSpeedKnots
	}
	return *v.IdleSpeedKnots
}

// CleanedAt parses LastCleaned. ok is false when LastCleaned is empty.
func (v Vessel) CleanedAt() (t time.Time, ok bool, err error) {
	if v.LastCleaned == "" {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(DateLayout, v.LastCleaned)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Source describes one sensor feed.
type Source struct {
	// Type is one of: prometheus | json | static | simulated.
	Type string `yaml:"type"`

	// Endpoint is the URL polled by prometheus and json sources.
	Endpoint string `yaml:"endpoint"`

	// RateLimit caps requests per second to Endpoint. Zero means unlimited.
	RateLimit float64 `yaml:"rate_limit"`

	// Seed drives the simulated source.
	Seed int64 `yaml:"seed"`

	// Static holds fixed observations for the static source, keyed by
	// canonical observation name (sea_temperature_c, salinity_psu, ...).
	Static map[string]float64 `yaml:"static"`

	// Auth configures how the agent authenticates to this source.
	Auth AuthConfig `yaml:"auth"`

	// TLS holds optional TLS dial options.
	TLS TLSConfig `yaml:"tls"`
}

// AuthConfig specifies the authentication mode for a source.
type AuthConfig struct {
	// Mode is one of: mtls | apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// mTLS fields, used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`

	// Header is the HTTP header (or gRPC metadata key) carrying the API key.
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`

	// TokenEnv holds the bearer token variable name.
	TokenEnv string `yaml:"token_env"`

	// Username is the literal basic-auth username.
	Username string `yaml:"username"`
	// PasswordEnv is the name of the environment variable that holds the password.
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// EffectiveHeader returns Header, or "x-api-key" when unset.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// TLSConfig holds per-source TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// ServerConfig is the subset of server settings the agent tolerates in a
// shared config file.
type ServerConfig struct {
	GRPCPort int `yaml:"grpc_port"`
	HTTPPort int `yaml:"http_port"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	applyVesselDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			SampleInterval: DefaultSampleInterval,
			ShipInterval:   DefaultShipInterval,
			BufferSize:     DefaultBufferSize,
		},
		Server: ServerConfig{
			GRPCPort: DefaultGRPCPort,
			HTTPPort: DefaultHTTPPort,
		},
	}
}

// applyVesselDefaults fills per-vessel fields that yaml cannot default.
func applyVesselDefaults(cfg *Config) {
	for i := range cfg.Agent.Vessels {
		v := &cfg.Agent.Vessels[i]
		if v.Variant == "" {
			v.Variant = fouling.VariantEnhanced
		}
		if v.Name == "" {
			v.Name = v.ID
		}
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Agent.ServerEndpoint == "" {
		return fmt.Errorf("agent.server_endpoint is required")
	}
	if cfg.Agent.SampleInterval <= 0 {
		return fmt.Errorf("agent.sample_interval must be positive")
	}
	if cfg.Agent.ShipInterval <= 0 {
		return fmt.Errorf("agent.ship_interval must be positive")
	}
	if cfg.Agent.BufferSize <= 0 {
		return fmt.Errorf("agent.buffer_size must be positive")
	}
	if err := validateAuthMode("agent.server_auth", cfg.Agent.ServerAuth.Mode); err != nil {
		return err
	}

	seen := make(map[string]bool, len(cfg.Agent.Vessels))
	for i, v := range cfg.Agent.Vessels {
		if v.ID == "" {
			return fmt.Errorf("vessels[%d]: id is required", i)
		}
		if seen[v.ID] {
			return fmt.Errorf("vessels[%d]: duplicate id %q", i, v.ID)
		}
		seen[v.ID] = true

		if _, err := fouling.Lookup(v.Variant); err != nil {
			return fmt.Errorf("vessels[%d] %q: %w", i, v.ID, err)
		}
		if _, _, err := v.CleanedAt(); err != nil {
			return fmt.Errorf("vessels[%d] %q: last_cleaned %q: want YYYY-MM-DD", i, v.ID, v.LastCleaned)
		}
		if v.IdleSpeed() < 0 {
			return fmt.Errorf("vessels[%d] %q: idle_speed_knots must not be negative", i, v.ID)
		}

		src := v.Source
		switch src.Type {
		case "prometheus", "json":
			if src.Endpoint == "" {
				return fmt.Errorf("vessels[%d] %q: endpoint is required for %s sources", i, v.ID, src.Type)
			}
		case "static", "simulated":
		default:
			return fmt.Errorf("vessels[%d] %q: unknown source type %q", i, v.ID, src.Type)
		}
		if src.RateLimit < 0 {
			return fmt.Errorf("vessels[%d] %q: rate_limit must not be negative", i, v.ID)
		}
		if err := validateAuthMode(fmt.Sprintf("vessels[%d] %q", i, v.ID), src.Auth.Mode); err != nil {
			return err
		}
	}
	return nil
}

func validateAuthMode(where, mode string) error {
	switch mode {
	case "mtls", "apikey", "bearer", "basic", "none", "":
		return nil
	default:
		return fmt.Errorf("%s: unknown auth mode %q", where, mode)
	}
}
