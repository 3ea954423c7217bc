package wallet

import (
	"context"
	"errors"

	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/crypto"
	"walletgate-backend/pkg/kms"
	"walletgate-backend/pkg/logger"
)

var ErrInvalidAddress = errors.New("invalid address")

// Service 钱包服务接口
// 所有密钥操作委托给KMS微服务，本层只做参数校验和转发
type Service interface {
	CreateWallet(ctx context.Context, req *types.CreateWalletRequest) (*types.CreateWalletResponse, error)
	EstimateGas(ctx context.Context, req *types.EstimateGasRequest) (*types.EstimateGasResponse, error)
	SendTransaction(ctx context.Context, req *types.SendTransactionRequest) (*types.SendTransactionResponse, error)
}

type service struct {
	kmsClient *kms.Client
}

// NewService 创建钱包服务
func NewService(kmsClient *kms.Client) Service {
	return &service{kmsClient: kmsClient}
}

// CreateWallet 创建托管钱包
func (s *service) CreateWallet(ctx context.Context, req *types.CreateWalletRequest) (*types.CreateWalletResponse, error) {
	result, err := s.kmsClient.CreateWallet(ctx, req.Network)
	if err != nil {
		logger.Error("KMS create wallet failed", err, "network", req.Network)
		return nil, err
	}

	logger.Info("Wallet created", "address", result.Address, "network", result.Network)
	return &types.CreateWalletResponse{
		WalletAddress: result.Address,
		Network:       result.Network,
	}, nil
}

// EstimateGas 估算Gas
func (s *service) EstimateGas(ctx context.Context, req *types.EstimateGasRequest) (*types.EstimateGasResponse, error) {
	if !crypto.IsValidAddress(req.From) || !crypto.IsValidAddress(req.To) {
		return nil, ErrInvalidAddress
	}

	result, err := s.kmsClient.EstimateGas(ctx, req.From, req.To, req.Value, req.Data)
	if err != nil {
		logger.Error("KMS estimate gas failed", err, "from", req.From, "to", req.To)
		return nil, err
	}

	return &types.EstimateGasResponse{
		GasLimit: result.GasLimit,
		GasPrice: result.GasPrice,
	}, nil
}

// SendTransaction 签名并发送交易
func (s *service) SendTransaction(ctx context.Context, req *types.SendTransactionRequest) (*types.SendTransactionResponse, error) {
	if !crypto.IsValidAddress(req.From) || !crypto.IsValidAddress(req.To) {
		return nil, ErrInvalidAddress
	}

	result, err := s.kmsClient.SendTransaction(ctx, req.From, req.To, req.Value, req.Data)
	if err != nil {
		logger.Error("KMS send transaction failed", err, "from", req.From, "to", req.To)
		return nil, err
	}

	logger.Info("Transaction submitted", "tx_hash", result.TxHash, "from", req.From)
	return &types.SendTransactionResponse{TxHash: result.TxHash}, nil
}
