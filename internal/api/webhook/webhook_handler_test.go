package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"walletgate-backend/internal/service/relay"
	webhookService "walletgate-backend/internal/service/webhook"
	"walletgate-backend/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSigningKey      = "whsec_test_key"
	testSignatureHeader = "X-Walletgate-Signature"
)

type capturingPublisher struct {
	published []*types.NormalizedEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, trigger relay.SubscriptionName, event *types.NormalizedEvent) error {
	p.published = append(p.published, event)
	return nil
}

func setupRouter(publisher *capturingPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	verifier := webhookService.NewSignatureVerifier(testSigningKey)
	processor := webhookService.NewProcessor(verifier, publisher, nil)

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewHandler(processor, testSignatureHeader).RegisterRoutes(v1)
	return router
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSigningKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/address-activity", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(testSignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleAddressActivitySuccess(t *testing.T) {
	publisher := &capturingPublisher{}
	router := setupRouter(publisher)

	body := []byte(`{"webhookId":"wh_123","id":"whevt_456","type":"ADDRESS_ACTIVITY","event":{"network":"ETH_MAINNET","activity":[{"category":"external","fromAddress":"0xaaa","toAddress":"0xbbb"}]}}`)
	w := postWebhook(router, body, signBody(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "0xaaa", publisher.published[0].FromAddress)
	assert.Equal(t, "0xbbb", publisher.published[0].ToAddress)
}

func TestHandleAddressActivityTamperedSignature(t *testing.T) {
	publisher := &capturingPublisher{}
	router := setupRouter(publisher)

	body := []byte(`{"webhookId":"wh_123","event":{"network":"ETH_MAINNET","activity":[{"category":"external"}]}}`)
	signature := signBody(body)

	// 篡改签名的最后一个字符
	if signature[len(signature)-1] == 'a' {
		signature = signature[:len(signature)-1] + "b"
	} else {
		signature = signature[:len(signature)-1] + "a"
	}

	w := postWebhook(router, body, signature)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Empty(t, publisher.published)
}

func TestHandleAddressActivityMissingSignature(t *testing.T) {
	publisher := &capturingPublisher{}
	router := setupRouter(publisher)

	body := []byte(`{"webhookId":"wh_123","event":{"activity":[{"category":"external"}]}}`)
	w := postWebhook(router, body, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Empty(t, publisher.published)
}

func TestHandleAddressActivityEmptyActivity(t *testing.T) {
	publisher := &capturingPublisher{}
	router := setupRouter(publisher)

	// 没有活动也视为成功接收，但不发布事件
	body := []byte(`{"webhookId":"wh_123","event":{"network":"ETH_MAINNET","activity":[]}}`)
	w := postWebhook(router, body, signBody(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, publisher.published)
}
