package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v3"
)

// settings holds the CLI configuration.
//
// Values are read from the environment first, then from the --config YAML
// file, then from flags given on the command line.
type settings struct {
	ServiceURL        string        `env:"GHOSTREADER_SERVICE_URL"        yaml:"service_url"`
	APIKey            string        `env:"GHOSTREADER_API_KEY"            yaml:"api_key"`
	RetrievalInterval time.Duration `env:"GHOSTREADER_RETRIEVAL_INTERVAL" yaml:"retrieval_interval" envDefault:"15s"`
	ReportInterval    time.Duration `env:"GHOSTREADER_REPORT_INTERVAL"    yaml:"report_interval"    envDefault:"10s"`
	ReadyTimeout      time.Duration `env:"GHOSTREADER_READY_TIMEOUT"      yaml:"ready_timeout"      envDefault:"10s"`
	MessagesDir       string        `env:"GHOSTREADER_MESSAGES_DIR"       yaml:"messages_dir"`
	DefaultLocale     string        `env:"GHOSTREADER_DEFAULT_LOCALE"     yaml:"default_locale"     envDefault:"en"`
	RedisURL          string        `env:"GHOSTREADER_REDIS_URL"          yaml:"redis_url"`
	OpenAIKey         string        `env:"OPENAI_API_KEY"                 yaml:"openai_api_key"`
	OpenAIModel       string        `env:"GHOSTREADER_OPENAI_MODEL"       yaml:"openai_model"       envDefault:"gpt-4o-mini"`
	OpenAIBaseURL     string        `env:"GHOSTREADER_OPENAI_BASE_URL"    yaml:"openai_base_url"`
	MachineRPM        int           `env:"GHOSTREADER_MACHINE_RPM"        yaml:"machine_rpm"        envDefault:"60"`
	LogLevel          string        `env:"GHOSTREADER_LOG_LEVEL"          yaml:"log_level"          envDefault:"info"`
	LogFile           string        `env:"GHOSTREADER_LOG_FILE"           yaml:"log_file"`
}

// parseSettings registers the shared flags on fs, parses args and layers the
// configuration sources.
func parseSettings(fs *flag.FlagSet, args []string) (settings, error) {
	s, err := env.ParseAs[settings]()
	if err != nil {
		return s, fmt.Errorf("reading environment: %w", err)
	}

	configPath := fs.String("config", "", "YAML config file")
	fs.StringVar(&s.ServiceURL, "service-url", s.ServiceURL, "Translation service base URL")
	fs.StringVar(&s.APIKey, "api-key", s.APIKey, "Translation service API key")
	fs.DurationVar(&s.RetrievalInterval, "retrieval-interval", s.RetrievalInterval, "Interval between incremental fetches")
	fs.DurationVar(&s.ReportInterval, "report-interval", s.ReportInterval, "Interval between missing-translation reports")
	fs.DurationVar(&s.ReadyTimeout, "ready-timeout", s.ReadyTimeout, "How long to wait for the initial fetch")
	fs.StringVar(&s.MessagesDir, "messages", s.MessagesDir, "Directory with fallback message files")
	fs.StringVar(&s.DefaultLocale, "default-locale", s.DefaultLocale, "Default locale of the fallback messages")
	fs.StringVar(&s.RedisURL, "redis-url", s.RedisURL, "Redis URL for the snapshot store (optional)")
	fs.StringVar(&s.OpenAIKey, "openai-key", s.OpenAIKey, "OpenAI API key; enables machine translation of gaps")
	fs.StringVar(&s.OpenAIModel, "openai-model", s.OpenAIModel, "OpenAI model to use")
	fs.StringVar(&s.OpenAIBaseURL, "openai-base-url", s.OpenAIBaseURL, "Custom OpenAI base URL")
	fs.IntVar(&s.MachineRPM, "machine-rpm", s.MachineRPM, "Machine translation requests per minute")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&s.LogFile, "log-file", s.LogFile, "Write logs to a file instead of stderr")

	if err := fs.Parse(args); err != nil {
		return s, err
	}

	if *configPath == "" {
		return s, nil
	}

	// Flags win over the file: remember what was given and re-apply it.
	given := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		given[f.Name] = f.Value.String()
	})

	data, err := os.ReadFile(*configPath) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return s, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing config: %w", err)
	}

	for name, value := range given {
		if err := fs.Set(name, value); err != nil {
			return s, err
		}
	}

	return s, nil
}

// newLogger builds a tint handler writing to the log file or stderr.
func newLogger(s settings, stderr io.Writer) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s.LogLevel))); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q", s.LogLevel)
	}

	w := stderr
	closer := func() error { return nil }
	if s.LogFile != "" {
		f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) // #nosec G304 - CLI tool writes user-specified files
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closer = f.Close
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    s.LogFile != "",
	})
	return slog.New(handler), closer, nil
}
