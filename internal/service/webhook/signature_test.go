package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(key string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyValidSignature(t *testing.T) {
	v := NewSignatureVerifier("whsec_test_key")
	body := []byte(`{"webhookId":"wh_123","event":{"network":"ETH_MAINNET"}}`)

	assert.True(t, v.Verify(body, signBody("whsec_test_key", body)))
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	v := NewSignatureVerifier("whsec_test_key")
	body := []byte(`{"webhookId":"wh_123","event":{"network":"ETH_MAINNET"}}`)
	signature := signBody("whsec_test_key", body)

	// 任意单字节变动都应导致校验失败
	tampered := append([]byte(nil), body...)
	tampered[10] ^= 0x01
	assert.False(t, v.Verify(tampered, signature))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	body := []byte(`{"webhookId":"wh_123"}`)
	signature := signBody("whsec_other_key", body)

	v := NewSignatureVerifier("whsec_test_key")
	assert.False(t, v.Verify(body, signature))
}

func TestVerifySensitiveToReserialization(t *testing.T) {
	v := NewSignatureVerifier("whsec_test_key")

	// 语义相同但字节不同（字段顺序、空白）的JSON不能通过校验
	original := []byte(`{"a":1,"b":2}`)
	reserialized := []byte(`{"b":2,"a":1}`)
	signature := signBody("whsec_test_key", original)

	assert.True(t, v.Verify(original, signature))
	assert.False(t, v.Verify(reserialized, signature))
}

func TestVerifyMissingInputs(t *testing.T) {
	v := NewSignatureVerifier("whsec_test_key")
	body := []byte(`{}`)

	assert.False(t, v.Verify(nil, signBody("whsec_test_key", body)))
	assert.False(t, v.Verify(body, ""))
}
