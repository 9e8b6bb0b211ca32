package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/chatlib"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	keyStorageBackend = "storage.backend"
	keyStorageDir     = "storage.dir"
	keyNamespace      = "storage.namespace"
	keyRedisAddr      = "redis.addr"
	keyAnswerBackend  = "answer.backend"
	keyAnswerURL      = "answer.url"
	keyAnswerAPIKey   = "answer.api_key"
	keyGeminiAPIKey   = "gemini.api_key"
	keyGeminiModel    = "gemini.model"
	keyLogLevel       = "log.level"
	keyLogFile        = "log.file"
	keyDebounce       = "autosave.debounce"
)

const envPrefix = "CHATLIB"

type config struct {
	StorageBackend string
	StorageDir     string
	Namespace      string
	RedisAddr      string
	AnswerBackend  string
	AnswerURL      string
	AnswerAPIKey   string
	GeminiAPIKey   string
	GeminiModel    string
	LogLevel       string
	LogFile        string
	Debounce       time.Duration
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".chatlib")
}

// newViper returns a viper instance reading CHATLIB_* variables, with
// flags bound to their keys.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyStorageBackend, "file")
	v.SetDefault(keyStorageDir, defaultDir())
	v.SetDefault(keyNamespace, chatlib.DefaultNamespace)
	v.SetDefault(keyRedisAddr, "localhost:6379")
	v.SetDefault(keyAnswerBackend, "echo")
	v.SetDefault(keyGeminiModel, "")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyDebounce, 250*time.Millisecond)

	if err := v.BindEnv(keyGeminiAPIKey, envPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, err
	}

	bindings := map[string]string{
		keyStorageBackend: "storage-backend",
		keyStorageDir:     "storage-dir",
		keyNamespace:      "namespace",
		keyRedisAddr:      "redis-addr",
		keyAnswerBackend:  "answer-backend",
		keyAnswerURL:      "answer-url",
		keyGeminiModel:    "gemini-model",
		keyLogLevel:       "log-level",
		keyLogFile:        "log-file",
		keyDebounce:       "autosave-debounce",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", flag, err)
		}
	}
	return v, nil
}

// loadConfig reads the optional config file and resolves all settings.
// An explicit configFile must exist; the default one may be absent.
func loadConfig(v *viper.Viper, configFile string) (config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultDir())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := config{
		StorageBackend: strings.ToLower(v.GetString(keyStorageBackend)),
		StorageDir:     v.GetString(keyStorageDir),
		Namespace:      v.GetString(keyNamespace),
		RedisAddr:      v.GetString(keyRedisAddr),
		AnswerBackend:  strings.ToLower(v.GetString(keyAnswerBackend)),
		AnswerURL:      v.GetString(keyAnswerURL),
		AnswerAPIKey:   v.GetString(keyAnswerAPIKey),
		GeminiAPIKey:   v.GetString(keyGeminiAPIKey),
		GeminiModel:    v.GetString(keyGeminiModel),
		LogLevel:       v.GetString(keyLogLevel),
		LogFile:        v.GetString(keyLogFile),
		Debounce:       v.GetDuration(keyDebounce),
	}
	if cfg.Namespace == "" {
		return config{}, errors.New("storage namespace cannot be empty")
	}
	if cfg.Debounce < 0 {
		return config{}, fmt.Errorf("autosave debounce cannot be negative: %s", cfg.Debounce)
	}
	return cfg, nil
}
