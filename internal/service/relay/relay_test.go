package relay

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"walletgate-backend/internal/config"
	"walletgate-backend/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTransport 内存版StreamTransport，消费组语义与Redis Streams一致
type memTransport struct {
	mu       sync.Mutex
	messages map[string][]StreamMessage // stream -> 全部消息
	cursors  map[string]int             // stream|group -> 已投递位置
	acked    map[string][]string        // stream|group -> 已ack的消息ID
	groups   map[string]bool            // stream|group -> 是否已创建
	seq      int
}

func newMemTransport() *memTransport {
	return &memTransport{
		messages: make(map[string][]StreamMessage),
		cursors:  make(map[string]int),
		acked:    make(map[string][]string),
		groups:   make(map[string]bool),
	}
}

func (t *memTransport) provisionGroup(stream, group string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.groups[stream+"|"+group] = true
}

func (t *memTransport) ackedIDs(stream, group string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.acked[stream+"|"+group]...)
}

func (t *memTransport) Publish(ctx context.Context, stream string, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.messages[stream] = append(t.messages[stream], StreamMessage{
		ID:      fmt.Sprintf("%d-0", t.seq),
		Payload: payload,
	})
	return nil
}

func (t *memTransport) GroupExists(ctx context.Context, stream, group string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.groups[stream+"|"+group], nil
}

func (t *memTransport) Fetch(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]StreamMessage, error) {
	t.mu.Lock()
	key := stream + "|" + group
	cursor := t.cursors[key]
	pending := t.messages[stream][cursor:]
	if len(pending) > int(count) {
		pending = pending[:count]
	}
	t.cursors[key] = cursor + len(pending)
	result := append([]StreamMessage(nil), pending...)
	t.mu.Unlock()

	if len(result) == 0 {
		// 模拟阻塞等待，避免消费循环空转
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(block):
		}
	}
	return result, nil
}

func (t *memTransport) Ack(ctx context.Context, stream, group string, ids ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := stream + "|" + group
	t.acked[key] = append(t.acked[key], ids...)
	return nil
}

func (t *memTransport) Reclaim(ctx context.Context, stream, group, consumer string, minIdle time.Duration) ([]StreamMessage, error) {
	return nil, nil
}

func testRelayConfig() *config.RelayConfig {
	return &config.RelayConfig{
		Topics:         map[string]string{"address_updated": "test:address-activity"},
		Groups:         map[string]string{"address_updated": "test-subscribers"},
		CallTimeout:    time.Second,
		BlockInterval:  5 * time.Millisecond,
		ReclaimMinIdle: time.Hour,
	}
}

func newTestRelay(t *testing.T) (*Relay, *memTransport) {
	t.Helper()
	transport := newMemTransport()
	transport.provisionGroup("test:address-activity", "test-subscribers")
	r := NewRelay(transport, testRelayConfig())
	t.Cleanup(r.Close)
	return r, transport
}

func sampleEvent() *types.NormalizedEvent {
	return &types.NormalizedEvent{
		Event:       types.ActivityCategoryExternal,
		FromAddress: "0xA",
		ToAddress:   "0xB",
	}
}

func TestPublishUnknownTrigger(t *testing.T) {
	r, _ := newTestRelay(t)

	err := r.Publish(context.Background(), SubscriptionName("unknown"), sampleEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTopic)
}

func TestSubscribeUnprovisionedGroup(t *testing.T) {
	transport := newMemTransport() // 没有预先创建消费组
	r := NewRelay(transport, testRelayConfig())
	defer r.Close()

	_, err := r.Subscribe(TriggerAddressUpdated, func(*types.NormalizedEvent) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSubscription)
}

func TestSubscriptionIDsUnique(t *testing.T) {
	r, _ := newTestRelay(t)

	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id, err := r.Subscribe(TriggerAddressUpdated, func(*types.NormalizedEvent) {})
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate subscription id %d", id)
		seen[id] = true
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	r, _ := newTestRelay(t)

	id, err := r.Subscribe(TriggerAddressUpdated, func(*types.NormalizedEvent) {})
	require.NoError(t, err)

	// 重复注销和注销未知ID都不应panic或报错
	r.Unsubscribe(id)
	r.Unsubscribe(id)
	r.Unsubscribe(999999)
}

func TestMultiSubscriberFanOut(t *testing.T) {
	r, _ := newTestRelay(t)

	var mu sync.Mutex
	var got1, got2 []*types.NormalizedEvent

	_, err := r.Subscribe(TriggerAddressUpdated, func(e *types.NormalizedEvent) {
		mu.Lock()
		got1 = append(got1, e)
		mu.Unlock()
	})
	require.NoError(t, err)

	_, err = r.Subscribe(TriggerAddressUpdated, func(e *types.NormalizedEvent) {
		mu.Lock()
		got2 = append(got2, e)
		mu.Unlock()
	})
	require.NoError(t, err)

	require.NoError(t, r.Publish(context.Background(), TriggerAddressUpdated, sampleEvent()))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got1) == 1 && len(got2) == 1
	}, 2*time.Second, 10*time.Millisecond, "both subscribers should receive the published event")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, types.ActivityCategoryExternal, got1[0].Event)
	assert.Equal(t, "0xA", got1[0].FromAddress)
	assert.Equal(t, "0xB", got2[0].ToAddress)
}

func TestMessageAckedAfterHandlers(t *testing.T) {
	r, transport := newTestRelay(t)

	_, err := r.Subscribe(TriggerAddressUpdated, func(*types.NormalizedEvent) {})
	require.NoError(t, err)

	require.NoError(t, r.Publish(context.Background(), TriggerAddressUpdated, sampleEvent()))

	require.Eventually(t, func() bool {
		return len(transport.ackedIDs("test:address-activity", "test-subscribers")) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandlerPanicSkipsAck(t *testing.T) {
	r, transport := newTestRelay(t)

	delivered := make(chan struct{}, 1)
	_, err := r.Subscribe(TriggerAddressUpdated, func(*types.NormalizedEvent) {
		delivered <- struct{}{}
		panic("handler failure")
	})
	require.NoError(t, err)

	require.NoError(t, r.Publish(context.Background(), TriggerAddressUpdated, sampleEvent()))

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	// handler panic后消息不能被ack，等待pending重投
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, transport.ackedIDs("test:address-activity", "test-subscribers"))
}

func TestSubscribeChanPullDelivery(t *testing.T) {
	r, _ := newTestRelay(t)

	id, ch, err := r.SubscribeChan(TriggerAddressUpdated)
	require.NoError(t, err)

	require.NoError(t, r.Publish(context.Background(), TriggerAddressUpdated, sampleEvent()))

	select {
	case event := <-ch:
		require.NotNil(t, event)
		assert.Equal(t, "0xA", event.FromAddress)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered on pull channel")
	}

	// 注销后channel关闭
	r.Unsubscribe(id)
	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")
}

func TestFullPullChannelSkipsAck(t *testing.T) {
	r, transport := newTestRelay(t)

	_, ch, err := r.SubscribeChan(TriggerAddressUpdated)
	require.NoError(t, err)

	// 不消费channel，填满缓冲后再多发一条
	buffered := cap(ch)
	for i := 0; i <= buffered; i++ {
		require.NoError(t, r.Publish(context.Background(), TriggerAddressUpdated, sampleEvent()))
	}

	// 缓冲内的消息正常ack，溢出的那条必须留在pending等待重投
	require.Eventually(t, func() bool {
		return len(transport.ackedIDs("test:address-activity", "test-subscribers")) == buffered
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, transport.ackedIDs("test:address-activity", "test-subscribers"), buffered,
		"overflow event must not be acked")
}

func TestConcurrentSubscribeUnsubscribe(t *testing.T) {
	r, _ := newTestRelay(t)

	var wg sync.WaitGroup
	ids := make(chan int64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := r.Subscribe(TriggerAddressUpdated, func(*types.NormalizedEvent) {})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
		r.Unsubscribe(id)
	}
}
