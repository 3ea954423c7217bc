package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrWrongType    = errors.New("wrong token type")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTClaims JWT载荷
type JWTClaims struct {
	WalletAddress string `json:"wallet_address"`
	TokenType     string `json:"token_type"` // access / refresh
	jwt.RegisteredClaims
}

// JWTManager JWT管理器
type JWTManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secret string, accessExpiry, refreshExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateTokenPair 生成access/refresh token对
func (m *JWTManager) GenerateTokenPair(walletAddress string) (accessToken, refreshToken string, expiresAt int64, err error) {
	now := time.Now()

	accessToken, err = m.generate(walletAddress, TokenTypeAccess, now, m.accessExpiry)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = m.generate(walletAddress, TokenTypeRefresh, now, m.refreshExpiry)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, now.Add(m.accessExpiry).Unix(), nil
}

// generate 生成单个token
func (m *JWTManager) generate(walletAddress, tokenType string, now time.Time, expiry time.Duration) (string, error) {
	claims := &JWTClaims{
		WalletAddress: walletAddress,
		TokenType:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   walletAddress,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyAccessToken 验证access token
func (m *JWTManager) VerifyAccessToken(tokenString string) (*JWTClaims, error) {
	return m.verify(tokenString, TokenTypeAccess)
}

// VerifyRefreshToken 验证refresh token
func (m *JWTManager) VerifyRefreshToken(tokenString string) (*JWTClaims, error) {
	return m.verify(tokenString, TokenTypeRefresh)
}

// verify 验证token并检查类型
func (m *JWTManager) verify(tokenString, tokenType string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongType
	}

	return claims, nil
}
