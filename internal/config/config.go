package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      App
	HTTP     HTTP
	Database Database
	Redis    Redis
	Queue    Queue
	Bot      Bot
	Finance  Finance
	Ranking  Ranking
}

type App struct {
	Name      string `env:"APP_NAME" envDefault:"propinvest"`
	Version   string `env:"APP_VERSION" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTP struct {
	ListenAddress        string        `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	ProbeListenAddress   string        `env:"PROBE_LISTEN_ADDRESS" envDefault:":8081"`
	MetricsListenAddress string        `env:"METRICS_LISTEN_ADDRESS" envDefault:":9090"`
	ShutdownTimeout      time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadHeaderTimeout    time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	LogFieldMaxLen       int           `env:"HTTP_LOG_FIELD_MAX_LEN" envDefault:"4096"`
	CORSAllowedOrigins   []string      `env:"HTTP_CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

type Bot struct {
	Token    string `env:"BOT_TOKEN" json:"-"`
	ChatID   int64  `env:"BOT_CHAT_ID"`
	AdminID  int64  `env:"BOT_ADMIN_ID"`
	Commands bool   `env:"BOT_COMMANDS_ENABLED" envDefault:"true"`
	PageSize int    `env:"BOT_PAGE_SIZE" envDefault:"10"`
}

// Enabled сводка в Telegram необязательна.
func (b Bot) Enabled() bool {
	return b.Token != "" && b.ChatID != 0
}

type Queue struct {
	Concurrency     int           `env:"QUEUE_CONCURRENCY" envDefault:"2"`
	RefreshInterval time.Duration `env:"RANKING_REFRESH_INTERVAL" envDefault:"1h"`
	RefreshOnStart  bool          `env:"RANKING_REFRESH_ON_START" envDefault:"true"`
}

type Finance struct {
	ServiceabilityBufferPct float64       `env:"SERVICEABILITY_BUFFER_PCT" envDefault:"3.0"`
	BracketCacheTTL         time.Duration `env:"DUTY_BRACKET_CACHE_TTL" envDefault:"10m"`
}

type Ranking struct {
	DigestTopN  int           `env:"RANKING_DIGEST_TOP_N" envDefault:"10"`
	SnapshotKey string        `env:"RANKING_SNAPSHOT_KEY" envDefault:"propinvest:ranking:latest"`
	SnapshotTTL time.Duration `env:"RANKING_SNAPSHOT_TTL" envDefault:"168h"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.Database.validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}
