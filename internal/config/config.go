package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	StripeSecretKey     string // Stripe APIキー
	StripeWebhookSecret string // Webhook署名シークレット

	ResendAPIKey string // 確認メール送信用（空なら送信スキップ）
	FromEmail    string // 送信元アドレス
	ContactEmail string // 運用通知の宛先

	JWTSecret         string // 管理画面トークンの署名シークレット
	AdminEmail        string // 管理者ログインID
	AdminPasswordHash string // 管理者パスワードのbcryptハッシュ

	//割引コード機能のフラグ。falseのとき割引系エンドポイントは全部拒否
	DiscountCodesEnabled bool

	//送料ルール（ペンス）
	FreeShippingThreshold int64
	ShippingFlatRate      int64

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSで使う）
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		FromEmail:    getenv("FROM_EMAIL", "contact@plagueduk.com"),
		ContactEmail: getenv("CONTACT_EMAIL", "plagueduk@gmail.com"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		DiscountCodesEnabled: getenvBool("DISCOUNT_CODES_ENABLED", true),

		FreeShippingThreshold: 5000,
		ShippingFlatRate:      495,

		GoEnv: getenv("GO_ENV", "dev"),
		FEURL: getenv("FE_URL", "http://localhost:5173"),
	}

	if v := os.Getenv("FREE_SHIPPING_THRESHOLD"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("FREE_SHIPPING_THRESHOLD must be number: %w", err)
		}
		cfg.FreeShippingThreshold = n
	}
	if v := os.Getenv("SHIPPING_FLAT_RATE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("SHIPPING_FLAT_RATE must be number: %w", err)
		}
		cfg.ShippingFlatRate = n
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.StripeSecretKey == "" {
		return Config{}, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return Config{}, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
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
