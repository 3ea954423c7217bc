package account

import (
	"context"
	"errors"

	accountRepo "walletgate-backend/internal/repository/account"
	activityRepo "walletgate-backend/internal/repository/activity"
	"walletgate-backend/internal/types"
)

var ErrAccountNotFound = errors.New("account not found")

// Service 账户服务接口
type Service interface {
	GetProfile(ctx context.Context, walletAddress string) (*types.AccountProfile, error)
	UpdateProfile(ctx context.Context, walletAddress string, req *types.UpdateProfileRequest) (*types.AccountProfile, error)
	GetActivities(ctx context.Context, walletAddress string, offset, limit int) (*types.ActivityListResponse, error)
}

type service struct {
	accountRepo  accountRepo.Repository
	activityRepo activityRepo.Repository
}

// NewService 创建账户服务
func NewService(accountRepo accountRepo.Repository, activityRepo activityRepo.Repository) Service {
	return &service{
		accountRepo:  accountRepo,
		activityRepo: activityRepo,
	}
}

// GetProfile 获取账户资料
func (s *service) GetProfile(ctx context.Context, walletAddress string) (*types.AccountProfile, error) {
	account, err := s.accountRepo.GetByWalletAddress(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	return &types.AccountProfile{
		WalletAddress: account.WalletAddress,
		DisplayName:   account.DisplayName,
		AvatarURL:     account.AvatarURL,
		Email:         account.Email,
		CreatedAt:     account.CreatedAt.Unix(),
	}, nil
}

// UpdateProfile 更新账户资料
// 只更新请求中出现的字段
func (s *service) UpdateProfile(ctx context.Context, walletAddress string, req *types.UpdateProfileRequest) (*types.AccountProfile, error) {
	account, err := s.accountRepo.GetByWalletAddress(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if req.DisplayName != nil {
		account.DisplayName = req.DisplayName
	}
	if req.AvatarURL != nil {
		account.AvatarURL = req.AvatarURL
	}
	if req.Email != nil {
		account.Email = req.Email
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	return &types.AccountProfile{
		WalletAddress: account.WalletAddress,
		DisplayName:   account.DisplayName,
		AvatarURL:     account.AvatarURL,
		Email:         account.Email,
		CreatedAt:     account.CreatedAt.Unix(),
	}, nil
}

// GetActivities 查询账户相关的地址活动
func (s *service) GetActivities(ctx context.Context, walletAddress string, offset, limit int) (*types.ActivityListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	activities, total, err := s.activityRepo.GetByAddress(ctx, walletAddress, offset, limit)
	if err != nil {
		return nil, err
	}

	return &types.ActivityListResponse{
		Total:      total,
		Activities: activities,
	}, nil
}
