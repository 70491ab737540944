package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		Addr            string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
		SignInRate      float64
		SignInBurst     int
	}

	BackendConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	SessionConfig struct {
		SecretKey string
		StoreName string
		MaxAge    time.Duration
	}

	CacheConfig struct {
		StaleTime     time.Duration
		GCTime        time.Duration
		SweepSchedule string
	}

	TelemetryConfig struct {
		Stdout         bool // print spans and metrics to stdout
		MetricInterval time.Duration
	}

	Config struct {
		AppName      string
		Build        string
		Env          string
		Debug        bool
		TestMode     bool
		RollbarToken string

		Server    ServerConfig
		Backend   BackendConfig
		Session   SessionConfig
		Cache     CacheConfig
		Telemetry TelemetryConfig
	}
)

// NewConfig reads the configuration from the environment.
// ENV selects the env prefix and the optional `config/.env.<env>` file.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Markaz")
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("rollbarToken", "")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverReadTimeout", 5*time.Second)
	v.SetDefault("serverWriteTimeout", 40*time.Second)
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("serverDisableReqLogs", false)
	v.SetDefault("serverSignInRate", 5.0/60.0)
	v.SetDefault("serverSignInBurst", 5)

	v.SetDefault("backendBaseURL", "https://admin-crm.onrender.com")
	v.SetDefault("backendTimeout", 30*time.Second)

	v.SetDefault("sessionSecretKey", "d9#vq2k1m$u8z!e4rt7w0x)p3(bn6y5c")
	v.SetDefault("sessionStoreName", "markaz_store")
	v.SetDefault("sessionMaxAge", 24*time.Hour)

	v.SetDefault("cacheStaleTime", 5*time.Minute)
	v.SetDefault("cacheGCTime", 10*time.Minute)
	v.SetDefault("cacheSweepSchedule", "@every 1m")

	v.SetDefault("telemetryStdout", false)
	v.SetDefault("telemetryMetricInterval", time.Minute)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("serverHost"),
			Addr:            v.GetString("serverAddr"),
			DebugHost:       v.GetString("serverDebugHost"),
			ReadTimeout:     v.GetDuration("serverReadTimeout"),
			WriteTimeout:    v.GetDuration("serverWriteTimeout"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
			DisableReqLogs:  v.GetBool("serverDisableReqLogs"),
			SignInRate:      v.GetFloat64("serverSignInRate"),
			SignInBurst:     v.GetInt("serverSignInBurst"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(v.GetString("backendBaseURL"), "/"),
			Timeout: v.GetDuration("backendTimeout"),
		},
		Session: SessionConfig{
			SecretKey: v.GetString("sessionSecretKey"),
			StoreName: v.GetString("sessionStoreName"),
			MaxAge:    v.GetDuration("sessionMaxAge"),
		},
		Cache: CacheConfig{
			StaleTime:     v.GetDuration("cacheStaleTime"),
			GCTime:        v.GetDuration("cacheGCTime"),
			SweepSchedule: v.GetString("cacheSweepSchedule"),
		},
		Telemetry: TelemetryConfig{
			Stdout:         v.GetBool("telemetryStdout"),
			MetricInterval: v.GetDuration("telemetryMetricInterval"),
		},
	}
}
