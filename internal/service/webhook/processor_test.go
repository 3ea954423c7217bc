package webhook

import (
	"context"
	"encoding/json"
	"testing"

	"walletgate-backend/internal/service/relay"
	"walletgate-backend/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	published []*types.NormalizedEvent
	err       error
}

func (p *capturingPublisher) Publish(ctx context.Context, trigger relay.SubscriptionName, event *types.NormalizedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

func webhookBody(t *testing.T, activity ...types.WebHookAddressActivity) []byte {
	t.Helper()
	raw, err := json.Marshal(types.WebhookRequestBody{
		WebhookID: "wh_123",
		ID:        "whevt_456",
		Type:      "ADDRESS_ACTIVITY",
		Event: types.WebHookEvent{
			Network:  "ETH_MAINNET",
			Activity: activity,
		},
	})
	require.NoError(t, err)
	return raw
}

func TestProcessValidWebhook(t *testing.T) {
	publisher := &capturingPublisher{}
	p := NewProcessor(NewSignatureVerifier("whsec_test_key"), publisher, nil)

	body := webhookBody(t, types.WebHookAddressActivity{
		Category:    types.ActivityCategoryExternal,
		FromAddress: "0xaaa",
		ToAddress:   "0xbbb",
	})

	err := p.Process(context.Background(), body, signBody("whsec_test_key", body))
	require.NoError(t, err)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "0xaaa", publisher.published[0].FromAddress)
}

func TestProcessRejectsInvalidSignature(t *testing.T) {
	publisher := &capturingPublisher{}
	p := NewProcessor(NewSignatureVerifier("whsec_test_key"), publisher, nil)

	body := webhookBody(t, types.WebHookAddressActivity{Category: types.ActivityCategoryExternal})

	err := p.Process(context.Background(), body, signBody("whsec_wrong_key", body))
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, publisher.published)
}

func TestProcessMissingInputs(t *testing.T) {
	publisher := &capturingPublisher{}
	p := NewProcessor(NewSignatureVerifier("whsec_test_key"), publisher, nil)

	err := p.Process(context.Background(), nil, "deadbeef")
	assert.ErrorIs(t, err, ErrMissingBody)

	body := webhookBody(t)
	err = p.Process(context.Background(), body, "")
	assert.ErrorIs(t, err, ErrMissingSignature)
	assert.Empty(t, publisher.published)
}

func TestProcessMalformedBody(t *testing.T) {
	publisher := &capturingPublisher{}
	p := NewProcessor(NewSignatureVerifier("whsec_test_key"), publisher, nil)

	// 签名有效但不是合法JSON
	body := []byte(`{"webhookId":`)
	err := p.Process(context.Background(), body, signBody("whsec_test_key", body))
	assert.ErrorIs(t, err, ErrMalformedBody)
	assert.Empty(t, publisher.published)
}

func TestProcessEmptyActivityIsSuccess(t *testing.T) {
	publisher := &capturingPublisher{}
	p := NewProcessor(NewSignatureVerifier("whsec_test_key"), publisher, nil)

	body := webhookBody(t)
	err := p.Process(context.Background(), body, signBody("whsec_test_key", body))
	assert.NoError(t, err)
	assert.Empty(t, publisher.published)
}
