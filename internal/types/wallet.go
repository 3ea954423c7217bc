package types

// CreateWalletRequest 创建托管钱包请求
type CreateWalletRequest struct {
	Network string `json:"network" binding:"required"`
}

// CreateWalletResponse 创建托管钱包响应
type CreateWalletResponse struct {
	WalletAddress string `json:"wallet_address"`
	Network       string `json:"network"`
}

// EstimateGasRequest 估算Gas请求
type EstimateGasRequest struct {
	From  string `json:"from" binding:"required"`
	To    string `json:"to" binding:"required"`
	Value string `json:"value"`
	Data  string `json:"data"`
}

// EstimateGasResponse 估算Gas响应
type EstimateGasResponse struct {
	GasLimit string `json:"gas_limit"`
	GasPrice string `json:"gas_price"`
}

// SendTransactionRequest 签名并发送交易请求
type SendTransactionRequest struct {
	From  string `json:"from" binding:"required"`
	To    string `json:"to" binding:"required"`
	Value string `json:"value"`
	Data  string `json:"data"`
}

// SendTransactionResponse 签名并发送交易响应
type SendTransactionResponse struct {
	TxHash string `json:"tx_hash"`
}
