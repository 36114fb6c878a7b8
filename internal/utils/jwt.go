package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	jwtMu     sync.RWMutex
	jwtSecret = []byte("change_me")
	jwtExpire = 240 * time.Hour
)

type Claims struct {
	UserID uint `json:"user_id"`
	jwt.StandardClaims
}

// ConfigureJWT 設定簽章密鑰與有效期限，於啟動時呼叫一次
func ConfigureJWT(secret string, expire time.Duration) {
	jwtMu.Lock()
	defer jwtMu.Unlock()

	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if expire > 0 {
		jwtExpire = expire
	}
}

// GenerateToken 生成一個新的 JWT token
func GenerateToken(userID uint) (string, error) {
	jwtMu.RLock()
	secret, expire := jwtSecret, jwtExpire
	jwtMu.RUnlock()

	nowTime := time.Now()
	claims := Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: nowTime.Add(expire).Unix(),
			IssuedAt:  nowTime.Unix(),
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString(secret)
}

// ParseToken 解析和驗證 JWT token
func ParseToken(token string) (*Claims, error) {
	jwtMu.RLock()
	secret := jwtSecret
	jwtMu.RUnlock()

	tokenClaims, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := tokenClaims.Claims.(*Claims); ok && tokenClaims.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
