package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"walletgate-backend/internal/config"
	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/logger"

	"github.com/google/uuid"
)

// SubscriptionName 订阅触发器名
type SubscriptionName string

const (
	// TriggerAddressUpdated 地址活动更新
	TriggerAddressUpdated SubscriptionName = "address_updated"
)

var (
	ErrNoTopic        = errors.New("no topic found for trigger")
	ErrNoSubscription = errors.New("no subscription found for trigger")
	ErrRelayClosed    = errors.New("relay is closed")
)

// MessageHandler 消息回调
// 同一消息可能重复投递（at-least-once），回调需要幂等
type MessageHandler func(event *types.NormalizedEvent)

// registration 单个订阅登记
type registration struct {
	id      int64
	trigger SubscriptionName
	handler MessageHandler
	ch      chan *types.NormalizedEvent // 拉模式使用，推模式为nil
}

// listener 每个触发器一个消费循环
// 进程内注册的多个订阅共享一条消费组连接，消息到达后逐个分发
type listener struct {
	trigger  SubscriptionName
	stream   string
	group    string
	consumer string
	cancel   context.CancelFunc
	done     chan struct{}
}

// Relay 基于持久化消息流的发布/订阅中继
// 显式对象，进程启动时构造一次并按引用传递，不做包级单例
type Relay struct {
	transport StreamTransport
	cfg       *config.RelayConfig

	nextID atomic.Int64

	mu        sync.Mutex
	subs      map[int64]*registration
	listeners map[SubscriptionName]*listener
	byTrigger map[SubscriptionName]map[int64]*registration
	closed    bool
}

// NewRelay 创建Relay实例
func NewRelay(transport StreamTransport, cfg *config.RelayConfig) *Relay {
	return &Relay{
		transport: transport,
		cfg:       cfg,
		subs:      make(map[int64]*registration),
		listeners: make(map[SubscriptionName]*listener),
		byTrigger: make(map[SubscriptionName]map[int64]*registration),
	}
}

// Publish 将规范化事件发布到触发器对应的topic
// 只等待传输层接受消息，不等待订阅端处理；并发发布之间没有顺序保证
func (r *Relay) Publish(ctx context.Context, trigger SubscriptionName, event *types.NormalizedEvent) error {
	stream, ok := r.cfg.Topics[string(trigger)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoTopic, trigger)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout())
	defer cancel()

	if err := r.transport.Publish(callCtx, stream, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", stream, err)
	}

	logger.Debug("Relay published event", "trigger", trigger, "from", event.FromAddress, "to", event.ToAddress)
	return nil
}

// Subscribe 注册推模式订阅，返回进程内唯一的订阅ID
// 触发器对应的消费组必须已预先创建好，解析失败属于配置错误，不重试
func (r *Relay) Subscribe(trigger SubscriptionName, handler MessageHandler) (int64, error) {
	if handler == nil {
		return 0, errors.New("handler is required")
	}
	return r.register(trigger, handler, nil)
}

// SubscribeChan 注册拉模式订阅，消息通过返回的channel投递
// Unsubscribe 时channel关闭
func (r *Relay) SubscribeChan(trigger SubscriptionName) (int64, <-chan *types.NormalizedEvent, error) {
	ch := make(chan *types.NormalizedEvent, 64)
	id, err := r.register(trigger, nil, ch)
	if err != nil {
		return 0, nil, err
	}
	return id, ch, nil
}

// register 登记订阅并在需要时启动消费循环
func (r *Relay) register(trigger SubscriptionName, handler MessageHandler, ch chan *types.NormalizedEvent) (int64, error) {
	stream, ok := r.cfg.Topics[string(trigger)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoTopic, trigger)
	}
	group, ok := r.cfg.Groups[string(trigger)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoSubscription, trigger)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrRelayClosed
	}

	// 首个订阅负责解析消费组并启动循环，后续订阅直接挂载
	if _, ok := r.listeners[trigger]; !ok {
		callCtx, cancel := context.WithTimeout(context.Background(), r.callTimeout())
		exists, err := r.transport.GroupExists(callCtx, stream, group)
		cancel()
		if err != nil {
			return 0, fmt.Errorf("failed to resolve consumer group %s: %w", group, err)
		}
		if !exists {
			return 0, fmt.Errorf("%w: consumer group %s not provisioned on %s", ErrNoSubscription, group, stream)
		}

		loopCtx, loopCancel := context.WithCancel(context.Background())
		l := &listener{
			trigger:  trigger,
			stream:   stream,
			group:    group,
			consumer: "walletgate-" + uuid.NewString(),
			cancel:   loopCancel,
			done:     make(chan struct{}),
		}
		r.listeners[trigger] = l
		r.byTrigger[trigger] = make(map[int64]*registration)
		go r.consumeLoop(loopCtx, l)
	}

	id := r.nextID.Add(1)
	reg := &registration{id: id, trigger: trigger, handler: handler, ch: ch}
	r.subs[id] = reg
	r.byTrigger[trigger][id] = reg

	logger.Info("Relay subscription registered", "trigger", trigger, "subscription_id", id)
	return id, nil
}

// Unsubscribe 注销订阅
// 未知ID（已注销或从未存在）静默返回，幂等
func (r *Relay) Unsubscribe(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.subs[id]
	if !ok {
		return
	}

	delete(r.subs, id)
	delete(r.byTrigger[reg.trigger], id)
	if reg.ch != nil {
		close(reg.ch)
	}

	// 最后一个订阅注销后停掉消费循环
	if len(r.byTrigger[reg.trigger]) == 0 {
		if l, ok := r.listeners[reg.trigger]; ok {
			l.cancel()
			delete(r.listeners, reg.trigger)
			delete(r.byTrigger, reg.trigger)
		}
	}

	logger.Info("Relay subscription removed", "trigger", reg.trigger, "subscription_id", id)
}

// Close 停止所有消费循环并注销全部订阅
func (r *Relay) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true

	var waiting []chan struct{}
	for _, l := range r.listeners {
		l.cancel()
		waiting = append(waiting, l.done)
	}
	for _, reg := range r.subs {
		if reg.ch != nil {
			close(reg.ch)
		}
	}
	r.listeners = make(map[SubscriptionName]*listener)
	r.byTrigger = make(map[SubscriptionName]map[int64]*registration)
	r.subs = make(map[int64]*registration)
	r.mu.Unlock()

	for _, done := range waiting {
		<-done
	}
	logger.Info("Relay closed")
}

// consumeLoop 消费循环：拉取 -> 分发 -> ack
func (r *Relay) consumeLoop(ctx context.Context, l *listener) {
	defer close(l.done)

	reclaimTicker := time.NewTicker(r.reclaimMinIdle())
	defer reclaimTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-reclaimTicker.C:
			// 认领空闲的pending消息（此前handler panic或进程崩溃导致未ack的）
			msgs, err := r.transport.Reclaim(ctx, l.stream, l.group, l.consumer, r.reclaimMinIdle())
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("Relay reclaim failed", "trigger", l.trigger, "error", err)
				}
				continue
			}
			r.dispatchBatch(ctx, l, msgs)
		default:
			msgs, err := r.transport.Fetch(ctx, l.stream, l.group, l.consumer, 16, r.blockInterval())
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("Relay fetch failed", err, "trigger", l.trigger, "stream", l.stream)
				// 读取失败后退避，避免空转
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}
			r.dispatchBatch(ctx, l, msgs)
		}
	}
}

// dispatchBatch 分发一批消息，每条消息全部回调执行完后才ack
func (r *Relay) dispatchBatch(ctx context.Context, l *listener, msgs []StreamMessage) {
	for _, msg := range msgs {
		if r.dispatch(ctx, l, msg) {
			callCtx, cancel := context.WithTimeout(ctx, r.callTimeout())
			if err := r.transport.Ack(callCtx, l.stream, l.group, msg.ID); err != nil && ctx.Err() == nil {
				logger.Warn("Relay ack failed", "trigger", l.trigger, "message_id", msg.ID, "error", err)
			}
			cancel()
		}
	}
}

// dispatch 将一条消息投递给该触发器下的所有订阅
// 返回是否可以ack；任一handler panic则不ack，等待pending重投
func (r *Relay) dispatch(ctx context.Context, l *listener, msg StreamMessage) (acked bool) {
	var event types.NormalizedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		// 无法解码的消息直接ack丢弃，重投也不会成功
		logger.Error("Relay received malformed payload", err, "trigger", l.trigger, "message_id", msg.ID)
		return true
	}

	r.mu.Lock()
	regs := make([]*registration, 0, len(r.byTrigger[l.trigger]))
	for _, reg := range r.byTrigger[l.trigger] {
		regs = append(regs, reg)
	}
	r.mu.Unlock()

	ok := true
	for _, reg := range regs {
		if !r.deliver(ctx, reg, &event) {
			ok = false
		}
	}
	return ok
}

// deliver 向单个订阅投递
func (r *Relay) deliver(ctx context.Context, reg *registration, event *types.NormalizedEvent) bool {
	if reg.handler != nil {
		return r.invokeHandler(reg, event)
	}
	return r.pushChannel(ctx, reg, event)
}

// invokeHandler 执行推模式回调，panic视为处理失败（不ack，等待重投）
func (r *Relay) invokeHandler(reg *registration, event *types.NormalizedEvent) (ok bool) {
	ok = true
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Relay handler panicked", fmt.Errorf("%v", rec), "subscription_id", reg.id)
			ok = false
		}
	}()

	reg.handler(event)
	return ok
}

// pushChannel 拉模式投递
// 缓冲满或循环已停止时投递失败（不ack，消息留在pending等待重投）
// 与Unsubscribe并发时channel可能已关闭，此时订阅正在注销，按投递成功处理
func (r *Relay) pushChannel(ctx context.Context, reg *registration, event *types.NormalizedEvent) (ok bool) {
	ok = true
	defer func() { _ = recover() }()

	select {
	case reg.ch <- event:
	case <-ctx.Done():
		ok = false
	default:
		logger.Warn("Relay pull channel full, event stays pending", "subscription_id", reg.id)
		ok = false
	}
	return ok
}

func (r *Relay) callTimeout() time.Duration {
	if r.cfg.CallTimeout > 0 {
		return r.cfg.CallTimeout
	}
	return 10 * time.Second
}

func (r *Relay) blockInterval() time.Duration {
	if r.cfg.BlockInterval > 0 {
		return r.cfg.BlockInterval
	}
	return 5 * time.Second
}

func (r *Relay) reclaimMinIdle() time.Duration {
	if r.cfg.ReclaimMinIdle > 0 {
		return r.cfg.ReclaimMinIdle
	}
	return 30 * time.Second
}
