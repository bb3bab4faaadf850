package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// 管理画面のログイン。管理者は環境変数で1人だけ設定する
// （顧客側の認証は持たない。注文はログイン不要で成立する）。
type AdminAuthUsecase struct {
	adminEmail        string
	adminPasswordHash string
	jwtSecret         []byte
	accessTTL         time.Duration
}

func NewAdminAuthUsecase(adminEmail, adminPasswordHash, jwtSecret string) *AdminAuthUsecase {
	return &AdminAuthUsecase{
		adminEmail:        strings.ToLower(strings.TrimSpace(adminEmail)),
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         []byte(jwtSecret),
		accessTTL:         15 * time.Minute,
	}
}

type AdminLoginOutput struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (u *AdminAuthUsecase) Login(ctx context.Context, email, password string) (AdminLoginOutput, error) {
	if u.adminEmail == "" || u.adminPasswordHash == "" {
		return AdminLoginOutput{}, NewHTTPError(http.StatusServiceUnavailable, "admin login is not configured")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email != u.adminEmail {
		return AdminLoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.adminPasswordHash), []byte(password)); err != nil {
		return AdminLoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	now := time.Now()
	expiresAt := now.Add(u.accessTTL)

	claims := jwt.MapClaims{
		"sub":  email,
		"role": "ADMIN",
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(u.jwtSecret)
	if err != nil {
		return AdminLoginOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	return AdminLoginOutput{AccessToken: signed, ExpiresAt: expiresAt}, nil
}
