package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	accountRepo "walletgate-backend/internal/repository/account"
	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/crypto"
	"walletgate-backend/pkg/logger"
	"walletgate-backend/pkg/utils"
)

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrAccountNotFound  = errors.New("account not found")
	ErrInvalidToken     = errors.New("invalid token")
)

// signMessageTemplate 待签名消息模板，前端展示给用户的内容必须逐字一致
const signMessageTemplate = "Welcome to WalletGate!\n\nSign this message to authenticate.\nNonce: %s"

// Service 认证服务接口
type Service interface {
	GetNonce(ctx context.Context, req *types.NonceRequest) (*types.NonceResponse, error)
	WalletConnect(ctx context.Context, req *types.WalletConnectRequest) (*types.WalletConnectResponse, error)
	RefreshToken(ctx context.Context, req *types.RefreshTokenRequest) (*types.WalletConnectResponse, error)
	VerifyToken(ctx context.Context, tokenString string) (*utils.JWTClaims, error)
}

type service struct {
	accountRepo accountRepo.Repository
	jwtManager  *utils.JWTManager
}

// NewService 创建认证服务
func NewService(accountRepo accountRepo.Repository, jwtManager *utils.JWTManager) Service {
	return &service{
		accountRepo: accountRepo,
		jwtManager:  jwtManager,
	}
}

// GetNonce 获取签名挑战
// 账户不存在时隐式创建
func (s *service) GetNonce(ctx context.Context, req *types.NonceRequest) (*types.NonceResponse, error) {
	if !crypto.IsValidAddress(req.WalletAddress) {
		return nil, ErrInvalidAddress
	}

	nonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	account, err := s.accountRepo.GetByWalletAddress(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	if account == nil {
		account = &types.Account{
			WalletAddress: crypto.NormalizeAddress(req.WalletAddress),
			Nonce:         nonce,
			Status:        1,
		}
		if err := s.accountRepo.Create(ctx, account); err != nil {
			return nil, err
		}
		logger.Info("Account created", "wallet_address", account.WalletAddress)
	} else {
		if err := s.accountRepo.UpdateNonce(ctx, req.WalletAddress, nonce); err != nil {
			return nil, err
		}
	}

	return &types.NonceResponse{
		WalletAddress: account.WalletAddress,
		Nonce:         nonce,
		Message:       fmt.Sprintf(signMessageTemplate, nonce),
	}, nil
}

// WalletConnect 校验钱包签名并签发token对
func (s *service) WalletConnect(ctx context.Context, req *types.WalletConnectRequest) (*types.WalletConnectResponse, error) {
	if !crypto.IsValidAddress(req.WalletAddress) {
		return nil, ErrInvalidAddress
	}

	account, err := s.accountRepo.GetByWalletAddress(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	message := fmt.Sprintf(signMessageTemplate, account.Nonce)
	if err := crypto.VerifyPersonalSignature(req.WalletAddress, message, req.Signature); err != nil {
		logger.Warn("Wallet signature verification failed", "wallet_address", req.WalletAddress, "error", err)
		return nil, ErrInvalidSignature
	}

	// nonce一次性使用，验签通过后立即轮换
	newNonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to rotate nonce: %w", err)
	}
	if err := s.accountRepo.UpdateNonce(ctx, req.WalletAddress, newNonce); err != nil {
		return nil, err
	}

	return s.issueTokens(account)
}

// RefreshToken 刷新token对
func (s *service) RefreshToken(ctx context.Context, req *types.RefreshTokenRequest) (*types.WalletConnectResponse, error) {
	claims, err := s.jwtManager.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	account, err := s.accountRepo.GetByWalletAddress(ctx, claims.WalletAddress)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	return s.issueTokens(account)
}

// VerifyToken 验证access token（认证中间件使用）
func (s *service) VerifyToken(ctx context.Context, tokenString string) (*utils.JWTClaims, error) {
	claims, err := s.jwtManager.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// issueTokens 签发token对并组装响应
func (s *service) issueTokens(account *types.Account) (*types.WalletConnectResponse, error) {
	accessToken, refreshToken, expiresAt, err := s.jwtManager.GenerateTokenPair(account.WalletAddress)
	if err != nil {
		logger.Error("Failed to generate token pair", err, "wallet_address", account.WalletAddress)
		return nil, err
	}

	return &types.WalletConnectResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Account: &types.AccountProfile{
			WalletAddress: account.WalletAddress,
			DisplayName:   account.DisplayName,
			AvatarURL:     account.AvatarURL,
			Email:         account.Email,
			CreatedAt:     account.CreatedAt.Unix(),
		},
	}, nil
}

// generateNonce 生成随机nonce
func generateNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
