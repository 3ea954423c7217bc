package crypto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("invalid signature")
)

// IsValidAddress 校验以太坊地址格式
func IsValidAddress(address string) bool {
	return common.IsHexAddress(address)
}

// NormalizeAddress 地址归一化为小写十六进制
// 地址比较按大小写不敏感处理
func NormalizeAddress(address string) string {
	return strings.ToLower(common.HexToAddress(address).Hex())
}

// VerifyPersonalSignature 验证personal_sign签名是否出自指定地址
func VerifyPersonalSignature(address, message, signature string) error {
	if !common.IsHexAddress(address) {
		return ErrInvalidAddress
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != 65 {
		return ErrInvalidSignature
	}

	// personal_sign 的 v 值可能是 27/28，恢复公钥前调整为 0/1
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	// EIP-191 前缀哈希
	msg := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	hash := ethcrypto.Keccak256([]byte(msg))

	pubKey, err := ethcrypto.SigToPub(hash, sig)
	if err != nil {
		return fmt.Errorf("failed to recover public key: %w", err)
	}

	recovered := ethcrypto.PubkeyToAddress(*pubKey)
	if !strings.EqualFold(recovered.Hex(), address) {
		return ErrInvalidSignature
	}

	return nil
}
