// Package config собирает параметры запуска сервиса из YAML-файла, флагов,
// файла .env и переменных окружения. Переменные окружения имеют наивысший приоритет.
package config

import (
	"compress/gzip"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	FlagRunAddr         string
	FlagLogLevel        string
	FlagLogFile         string
	MaxDecompressedSize int64
	StrictContentType   bool
	GzipLevel           int
	SecretKey           string
	EnableHTTPS         bool
	TrustedSubnet       string
	TabIdleTimeout      time.Duration
	JournalFile         string
	ConfigFile          string

	DefaultRunAddr             = ":8080"
	DefaultMaxDecompressedSize = int64(32 << 20)
	DefaultSecretKey           = "supersecretkey"
	DefaultTabIdleTimeout      = 30 * time.Minute
)

// FileConfig — структура YAML-файла конфигурации.
type FileConfig struct {
	Server struct {
		Address       string `yaml:"address"`
		HTTPS         bool   `yaml:"https"`
		TrustedSubnet string `yaml:"trustedSubnet"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Transform struct {
		MaxDecompressedSize *int64 `yaml:"maxDecompressedSize"`
		StrictContentType   bool   `yaml:"strictContentType"`
		GzipLevel           *int   `yaml:"gzipLevel"`
	} `yaml:"transform"`
	Auth struct {
		SecretKey string `yaml:"secretKey"`
	} `yaml:"auth"`
	Tabs struct {
		IdleTimeout *time.Duration `yaml:"idleTimeout"`
		Journal     string         `yaml:"journal"`
	} `yaml:"tabs"`
}

// ParseFlags разбирает аргументы командной строки процесса.
func ParseFlags() error {
	return Parse(flag.CommandLine, os.Args[1:])
}

// Parse заполняет параметры запуска. Порядок применения: значения по умолчанию,
// YAML-файл (-c или CONFIG), флаги, переменные окружения (в том числе из .env).
func Parse(fs *flag.FlagSet, args []string) error {
	_ = godotenv.Load()

	ConfigFile = ""
	for i, a := range args {
		switch {
		case (a == "-c" || a == "--c") && i+1 < len(args):
			ConfigFile = args[i+1]
		case strings.HasPrefix(a, "-c="):
			ConfigFile = strings.TrimPrefix(a, "-c=")
		}
	}
	if env := os.Getenv("CONFIG"); env != "" {
		ConfigFile = env
	}

	defaults, err := loadFile(ConfigFile)
	if err != nil {
		return err
	}

	fs.StringVar(&ConfigFile, "c", ConfigFile, "path to YAML config file")
	fs.StringVar(&FlagRunAddr, "a", orDefault(defaults.Server.Address, DefaultRunAddr), "address and port to run server")
	fs.StringVar(&FlagLogLevel, "l", orDefault(defaults.Log.Level, "info"), "log level")
	fs.StringVar(&FlagLogFile, "log-file", defaults.Log.File, "rotated log file, empty for stdout only")
	fs.Int64Var(&MaxDecompressedSize, "m", valueOr(defaults.Transform.MaxDecompressedSize, DefaultMaxDecompressedSize), "max decompressed body size in bytes, 0 for unlimited")
	fs.BoolVar(&StrictContentType, "strict", defaults.Transform.StrictContentType, "match Content-Type by exact media type")
	fs.IntVar(&GzipLevel, "z", valueOr(defaults.Transform.GzipLevel, gzip.DefaultCompression), "gzip compression level")
	fs.StringVar(&SecretKey, "k", orDefault(defaults.Auth.SecretKey, DefaultSecretKey), "secret key for tab tokens")
	fs.BoolVar(&EnableHTTPS, "s", defaults.Server.HTTPS, "enable HTTPS")
	fs.StringVar(&TrustedSubnet, "t", defaults.Server.TrustedSubnet, "trusted subnet (CIDR) for /debug/pprof")
	fs.StringVar(&JournalFile, "f", defaults.Tabs.Journal, "JSON Lines journal of saved messages, empty to disable")
	fs.DurationVar(&TabIdleTimeout, "idle", valueOr(defaults.Tabs.IdleTimeout, DefaultTabIdleTimeout), "close tabs idle for longer than this")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if envRunAddr := os.Getenv("SERVER_ADDRESS"); envRunAddr != "" {
		FlagRunAddr = envRunAddr
	}

	if envLogLevel := os.Getenv("LOG_LEVEL"); envLogLevel != "" {
		FlagLogLevel = envLogLevel
	}

	if envLogFile := os.Getenv("LOG_FILE"); envLogFile != "" {
		FlagLogFile = envLogFile
	}

	if envMax := os.Getenv("MAX_DECOMPRESSED_SIZE"); envMax != "" {
		n, err := strconv.ParseInt(envMax, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_DECOMPRESSED_SIZE: %w", err)
		}
		MaxDecompressedSize = n
	}

	if envStrict := os.Getenv("STRICT_CONTENT_TYPE"); envStrict != "" {
		b, err := strconv.ParseBool(envStrict)
		if err != nil {
			return fmt.Errorf("STRICT_CONTENT_TYPE: %w", err)
		}
		StrictContentType = b
	}

	if envLevel := os.Getenv("GZIP_LEVEL"); envLevel != "" {
		n, err := strconv.Atoi(envLevel)
		if err != nil {
			return fmt.Errorf("GZIP_LEVEL: %w", err)
		}
		GzipLevel = n
	}

	if envSecret := os.Getenv("SECRET_KEY"); envSecret != "" {
		SecretKey = envSecret
	}

	if envHTTPS := os.Getenv("ENABLE_HTTPS"); envHTTPS != "" {
		b, err := strconv.ParseBool(envHTTPS)
		if err != nil {
			return fmt.Errorf("ENABLE_HTTPS: %w", err)
		}
		EnableHTTPS = b
	}

	if envSubnet := os.Getenv("TRUSTED_SUBNET"); envSubnet != "" {
		TrustedSubnet = envSubnet
	}

	if envJournal := os.Getenv("JOURNAL_FILE"); envJournal != "" {
		JournalFile = envJournal
	}

	if envIdle := os.Getenv("TAB_IDLE_TIMEOUT"); envIdle != "" {
		d, err := time.ParseDuration(envIdle)
		if err != nil {
			return fmt.Errorf("TAB_IDLE_TIMEOUT: %w", err)
		}
		TabIdleTimeout = d
	}

	if MaxDecompressedSize < 0 {
		return fmt.Errorf("max decompressed size must not be negative: %d", MaxDecompressedSize)
	}
	if GzipLevel < gzip.HuffmanOnly || GzipLevel > gzip.BestCompression {
		return fmt.Errorf("invalid gzip level: %d", GzipLevel)
	}
	if TabIdleTimeout <= 0 {
		return fmt.Errorf("tab idle timeout must be positive: %s", TabIdleTimeout)
	}

	return nil
}

func loadFile(path string) (FileConfig, error) {
	var fc FileConfig
	if path == "" {
		return fc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &fc); err != nil {
		return fc, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func valueOr[T any](v *T, def T) T {
	if v != nil {
		return *v
	}
	return def
}
