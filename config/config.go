package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	// Documented safe defaults for token lifetimes: sessions last hours,
	// recovery tokens tens of minutes and always strictly less.
	defaultSessionLifetime  = 12 * time.Hour
	defaultRecoveryLifetime = 30 * time.Minute

	// defaultStoreTimeout bounds every credential-store access so no
	// operation in the subsystem can hang indefinitely.
	defaultStoreTimeout = 3 * time.Second

	// defaultPurgeInterval paces the janitor that clears expired recovery
	// consumption records.
	defaultPurgeInterval = time.Hour

	defaultPasswordMinLength = 10
	defaultPasswordMaxLength = 128
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	PasswordPolicy *PasswordPolicyConfig `json:"passwordPolicy" yaml:"passwordPolicy"`

	SMTP *SMTPConfig `json:"smtp" yaml:"smtp"`
}

// SigningKey is one HMAC key in the rotation set. Tokens carry the key id in
// their header; validation accepts any listed key, issuance uses ActiveKID.
type SigningKey struct {
	KID    string `json:"kid" yaml:"kid"`
	Secret string `json:"secret" yaml:"secret"`
}

// AuthConfig defines the credential subsystem's configuration surface:
// signing keys, token lifetimes, hashing cost and the store access timeout.
type AuthConfig struct {
	SigningKeys      []SigningKey  `json:"signingKeys" yaml:"signingKeys"`
	ActiveKID        string        `json:"activeKid" yaml:"activeKid"`
	SessionLifetime  time.Duration `json:"sessionLifetime" yaml:"sessionLifetime"`
	RecoveryLifetime time.Duration `json:"recoveryLifetime" yaml:"recoveryLifetime"`
	BcryptCost       int           `json:"bcryptCost" yaml:"bcryptCost"`
	StoreTimeout     time.Duration `json:"storeTimeout" yaml:"storeTimeout"`
	PurgeInterval    time.Duration `json:"purgeInterval" yaml:"purgeInterval"`
}

// PasswordPolicyConfig defines the minimum password policy applied on
// registration and reset. The floor is configuration, not code.
type PasswordPolicyConfig struct {
	MinLength int `json:"minLength" yaml:"minLength"`
	MaxLength int `json:"maxLength" yaml:"maxLength"`
}

// SMTPConfig defines the outbound mail transport used for recovery links.
type SMTPConfig struct {
	Host        string        `json:"host" yaml:"host"`
	Port        int           `json:"port" yaml:"port"`
	Username    string        `json:"username" yaml:"username"`
	Password    string        `json:"password" yaml:"password"`
	From        string        `json:"from" yaml:"from"`
	ResetURL    string        `json:"resetUrl" yaml:"resetUrl"`
	SendTimeout time.Duration `json:"sendTimeout" yaml:"sendTimeout"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf and layers environment
// variables on top.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: AUTH_ACTIVEKID -> auth.activeKid (not auth.activekid)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	cfg.Auth.applyDefaults()
	if err := cfg.Auth.validate(); err != nil {
		return nil, err
	}

	if cfg.PasswordPolicy == nil {
		cfg.PasswordPolicy = &PasswordPolicyConfig{}
	}
	if cfg.PasswordPolicy.MinLength <= 0 {
		cfg.PasswordPolicy.MinLength = defaultPasswordMinLength
	}
	if cfg.PasswordPolicy.MaxLength <= 0 {
		cfg.PasswordPolicy.MaxLength = defaultPasswordMaxLength
	}

	return cfg, nil
}

func (ac *AuthConfig) applyDefaults() {
	if ac.SessionLifetime <= 0 {
		ac.SessionLifetime = defaultSessionLifetime
	}
	if ac.RecoveryLifetime <= 0 {
		ac.RecoveryLifetime = defaultRecoveryLifetime
	}
	if ac.StoreTimeout <= 0 {
		ac.StoreTimeout = defaultStoreTimeout
	}
	if ac.PurgeInterval <= 0 {
		ac.PurgeInterval = defaultPurgeInterval
	}
}

func (ac *AuthConfig) validate() error {
	if len(ac.SigningKeys) == 0 {
		return errors.New("auth.signingKeys must list at least one key")
	}

	for _, key := range ac.SigningKeys {
		if key.KID == "" || key.Secret == "" {
			return errors.New("auth.signingKeys entries need both kid and secret")
		}
	}

	if ac.ActiveKID == "" {
		ac.ActiveKID = ac.SigningKeys[0].KID
	}

	found := false
	for _, key := range ac.SigningKeys {
		if key.KID == ac.ActiveKID {
			found = true

			break
		}
	}
	if !found {
		return errors.Errorf("auth.activeKid %q not present in auth.signingKeys", ac.ActiveKID)
	}

	// Recovery tokens must be materially shorter-lived than sessions.
	if ac.RecoveryLifetime >= ac.SessionLifetime {
		return errors.New("auth.recoveryLifetime must be strictly shorter than auth.sessionLifetime")
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
