package crypto

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// personalSign 用指定私钥对消息做personal_sign（v=27/28）
func personalSign(t *testing.T, key []byte, message string) (address, signature string) {
	t.Helper()
	privKey, err := ethcrypto.ToECDSA(key)
	require.NoError(t, err)

	msg := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	hash := ethcrypto.Keccak256([]byte(msg))

	sig, err := ethcrypto.Sign(hash, privKey)
	require.NoError(t, err)
	sig[64] += 27

	return ethcrypto.PubkeyToAddress(privKey.PublicKey).Hex(), hexutil.Encode(sig)
}

func testPrivateKey(t *testing.T) []byte {
	t.Helper()
	key, err := hexutil.Decode("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)
	return key
}

func TestVerifyPersonalSignature(t *testing.T) {
	address, signature := personalSign(t, testPrivateKey(t), "Nonce: abc123")

	assert.NoError(t, VerifyPersonalSignature(address, "Nonce: abc123", signature))
}

func TestVerifyPersonalSignatureWrongMessage(t *testing.T) {
	address, signature := personalSign(t, testPrivateKey(t), "Nonce: abc123")

	err := VerifyPersonalSignature(address, "Nonce: other", signature)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyPersonalSignatureWrongAddress(t *testing.T) {
	_, signature := personalSign(t, testPrivateKey(t), "Nonce: abc123")

	err := VerifyPersonalSignature("0x0000000000000000000000000000000000000001", "Nonce: abc123", signature)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyPersonalSignatureBadInputs(t *testing.T) {
	address, _ := personalSign(t, testPrivateKey(t), "Nonce: abc123")

	assert.ErrorIs(t, VerifyPersonalSignature("not-an-address", "msg", "0x00"), ErrInvalidAddress)
	assert.ErrorIs(t, VerifyPersonalSignature(address, "msg", "zzzz"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyPersonalSignature(address, "msg", "0x0102"), ErrInvalidSignature)
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t,
		NormalizeAddress("0xAB5801A7D398351B8BE11C439E05C5B3259AEC9B"),
		NormalizeAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b"))
	assert.True(t, IsValidAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b"))
	assert.False(t, IsValidAddress("0x123"))
}
