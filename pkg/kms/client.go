package kms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrKMSUnavailable = errors.New("kms service unavailable")

// Client 签名微服务REST客户端
// 钱包私钥全部托管在KMS侧，本服务只做参数校验和转发
type Client struct {
	http *resty.Client
}

// NewClient 创建KMS客户端
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-API-Key", apiKey)

	return &Client{http: httpClient}
}

// CreateWalletResult KMS创建钱包结果
type CreateWalletResult struct {
	Address string `json:"address"`
	Network string `json:"network"`
}

// EstimateGasResult KMS估算Gas结果
type EstimateGasResult struct {
	GasLimit string `json:"gasLimit"`
	GasPrice string `json:"gasPrice"`
}

// SendTransactionResult KMS签名发送结果
type SendTransactionResult struct {
	TxHash string `json:"txHash"`
}

// CreateWallet 创建托管钱包
func (c *Client) CreateWallet(ctx context.Context, network string) (*CreateWalletResult, error) {
	var result CreateWalletResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"network": network}).
		SetResult(&result).
		Post("/v1/wallets")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKMSUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("kms create wallet failed with status %d", resp.StatusCode())
	}
	return &result, nil
}

// EstimateGas 估算Gas
func (c *Client) EstimateGas(ctx context.Context, from, to, value, data string) (*EstimateGasResult, error) {
	var result EstimateGasResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"from": from, "to": to, "value": value, "data": data}).
		SetResult(&result).
		Post("/v1/gas/estimate")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKMSUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("kms estimate gas failed with status %d", resp.StatusCode())
	}
	return &result, nil
}

// SendTransaction 签名并广播交易
func (c *Client) SendTransaction(ctx context.Context, from, to, value, data string) (*SendTransactionResult, error) {
	var result SendTransactionResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"from": from, "to": to, "value": value, "data": data}).
		SetResult(&result).
		Post("/v1/transactions")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKMSUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("kms send transaction failed with status %d", resp.StatusCode())
	}
	return &result, nil
}
