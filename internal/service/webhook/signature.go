package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureVerifier Webhook签名校验器
// 与地址监控服务共享一个静态密钥，不支持密钥轮换
type SignatureVerifier struct {
	signingKey []byte
}

// NewSignatureVerifier 创建签名校验器
func NewSignatureVerifier(signingKey string) *SignatureVerifier {
	return &SignatureVerifier{signingKey: []byte(signingKey)}
}

// Verify 校验签名
// rawBody 必须是线上收到的原始字节，任何解析后重新序列化的内容都会导致校验结果失真
// 入参缺失或不匹配都返回 false，是否视为错误由调用方决定
func (v *SignatureVerifier) Verify(rawBody []byte, signatureHeader string) bool {
	if len(rawBody) == 0 || signatureHeader == "" {
		return false
	}

	mac := hmac.New(sha256.New, v.signingKey)
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}
