package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	API         API
	Fetch       Fetch
	Output      Output
	GoogleDrive GoogleDrive
}

type API struct {
	Debug    bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout  time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
	YahooApi YahooApi
}

type YahooApi struct {
	Url       string `env:"YAHOO_API_URL" envDefault:"https://query1.finance.yahoo.com"`
	UserAgent string `env:"YAHOO_API_USER_AGENT" envDefault:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"`
}

type Fetch struct {
	Retries      int           `env:"FETCH_RETRIES" envDefault:"3"`
	BaseSleep    time.Duration `env:"FETCH_BASE_SLEEP" envDefault:"500ms"`
	DefaultStart string        `env:"FETCH_DEFAULT_START" envDefault:"2000-01-01"`
}

type Output struct {
	BaseDir string `env:"OUTPUT_BASE_DIR" envDefault:"Yahoo_Crypto_Data"`
}

type GoogleDrive struct {
	CredentialsFile string `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
