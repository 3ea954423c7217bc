package webhook

import (
	"testing"

	"walletgate-backend/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 {
	return &v
}

func TestNormalizeFirstActivityOnly(t *testing.T) {
	body := &types.WebhookRequestBody{
		WebhookID: "wh_123",
		Event: types.WebHookEvent{
			Network: "ETH_MAINNET",
			Activity: []types.WebHookAddressActivity{
				{Category: types.ActivityCategoryExternal, FromAddress: "0xaaa", ToAddress: "0xbbb", Value: float64Ptr(1.5)},
				{Category: types.ActivityCategoryToken, FromAddress: "0xccc", ToAddress: "0xddd"},
			},
		},
	}

	event := Normalize(body)
	require.NotNil(t, event)
	assert.Equal(t, types.ActivityCategoryExternal, event.Event)
	assert.Equal(t, "0xaaa", event.FromAddress)
	assert.Equal(t, "0xbbb", event.ToAddress)
}

func TestNormalizeEmptyActivity(t *testing.T) {
	body := &types.WebhookRequestBody{
		WebhookID: "wh_123",
		Event:     types.WebHookEvent{Network: "ETH_MAINNET"},
	}

	assert.Nil(t, Normalize(body))
	assert.Nil(t, Normalize(nil))
}
