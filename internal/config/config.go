package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // これが空のときは個別のPOSTGRES_*を使う
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSなどで使う）

	// 決済
	MockPayments    bool   // trueなら外部Stripeに出ない
	StripeSecretKey string // MockPayments=falseのとき必須
	StripeCurrency  string // 既定 jpy

	// カート永続化
	CartBackend string // file / redis / memory
	CartDir     string // file のときの保存先
	RedisAddr   string // redis のときの接続先

	// 在庫減算を条件付きUPDATEにする（既定は読んでから引く）
	StrictStockDecrement bool

	// 放置PENDING注文の掃除
	OrphanSweepEnabled  bool
	OrphanSweepInterval time.Duration
	OrphanSweepTTL      time.Duration
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),

		MockPayments:    boolEnv("MOCK_PAYMENTS", false),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		StripeCurrency:  os.Getenv("STRIPE_CURRENCY"),

		CartBackend: os.Getenv("CART_BACKEND"),
		CartDir:     os.Getenv("CART_DIR"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		StrictStockDecrement: boolEnv("STRICT_STOCK_DECREMENT", false),

		OrphanSweepEnabled:  boolEnv("ORPHAN_SWEEP_ENABLED", false),
		OrphanSweepInterval: durationEnv("ORPHAN_SWEEP_INTERVAL", 10*time.Minute),
		OrphanSweepTTL:      durationEnv("ORPHAN_SWEEP_TTL", 24*time.Hour),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.DatabaseURL == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
		if cfg.PostgresHost == "" {
			return Config{}, fmt.Errorf("POSTGRES_HOST is required")
		}
		pgPort, err := mustAtoi("POSTGRES_PORT")
		if err != nil {
			return Config{}, err
		}
		cfg.PostgresPort = pgPort
	}

	if !cfg.MockPayments && cfg.StripeSecretKey == "" {
		return Config{}, fmt.Errorf("STRIPE_SECRET_KEY is required unless MOCK_PAYMENTS=true")
	}
	if cfg.StripeCurrency == "" {
		cfg.StripeCurrency = "jpy"
	}

	switch cfg.CartBackend {
	case "":
		cfg.CartBackend = "file"
	case "file", "redis", "memory":
	default:
		return Config{}, fmt.Errorf("CART_BACKEND must be file, redis or memory")
	}
	if cfg.CartBackend == "file" && cfg.CartDir == "" {
		cfg.CartDir = "./data/carts"
	}
	if cfg.CartBackend == "redis" && cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required when CART_BACKEND=redis")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func boolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
