package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "PETSYNC"
	configFileName = "petsync"
	configFileType = "yaml"

	cfgKeyAPIURL    = "api_url"
	cfgKeyUserID    = "user_id"
	cfgKeyToken     = "token"
	cfgKeyLogLevel  = "log_level"
	cfgKeyLogFormat = "log_format"
	cfgKeyLogFile   = "log_file"
	cfgKeyTimeout   = "timeout"

	defaultAPIURL  = "http://localhost:8080"
	defaultTimeout = 10 * time.Second
)

// Config es la configuración resuelta del CLI.
// Precedencia: flag > env PETSYNC_* > archivo > default.
type Config struct {
	APIURL    string
	UserID    string
	Token     string
	LogLevel  string
	LogFormat string
	LogFile   string
	Timeout   time.Duration
}

// LoadConfig lee la config con viper. path vacío busca petsync.yaml en el
// directorio actual y en ~/.config/petsync; que no exista no es error.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyAPIURL, defaultAPIURL)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogFormat, "text")
	v.SetDefault(cfgKeyTimeout, defaultTimeout)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if flags != nil {
		binds := map[string]string{
			cfgKeyAPIURL: "api-url",
			cfgKeyUserID: "user",
			cfgKeyToken:  "token",
		}
		for key, name := range binds {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "petsync"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		APIURL:    strings.TrimRight(strings.TrimSpace(v.GetString(cfgKeyAPIURL)), "/"),
		UserID:    strings.TrimSpace(v.GetString(cfgKeyUserID)),
		Token:     strings.TrimSpace(v.GetString(cfgKeyToken)),
		LogLevel:  v.GetString(cfgKeyLogLevel),
		LogFormat: v.GetString(cfgKeyLogFormat),
		LogFile:   v.GetString(cfgKeyLogFile),
		Timeout:   v.GetDuration(cfgKeyTimeout),
	}
	if cfg.UserID == "" {
		return Config{}, fmt.Errorf("%s is required (flag --user or %s_USER_ID)", cfgKeyUserID, envPrefix)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg, nil
}
