package relay

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamMessage 传输层投递的一条消息
type StreamMessage struct {
	ID      string
	Payload []byte
}

// StreamTransport 消息流传输层抽象
// 生产环境绑定 Redis Streams，测试使用内存实现
type StreamTransport interface {
	// Publish 向指定stream追加一条消息
	Publish(ctx context.Context, stream string, payload []byte) error
	// GroupExists 检查消费组是否已预先创建
	GroupExists(ctx context.Context, stream, group string) (bool, error)
	// Fetch 以消费组身份拉取新消息，block为阻塞等待时长
	Fetch(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]StreamMessage, error)
	// Ack 确认消息已处理完成
	Ack(ctx context.Context, stream, group string, ids ...string) error
	// Reclaim 认领空闲超过minIdle的pending消息（处理中途崩溃或handler异常未ack的）
	Reclaim(ctx context.Context, stream, group, consumer string, minIdle time.Duration) ([]StreamMessage, error)
}

// payloadField stream条目中存放消息体的字段名
const payloadField = "payload"

// redisTransport Redis Streams传输实现
type redisTransport struct {
	client *redis.Client
}

// NewRedisTransport 创建Redis Streams传输层
func NewRedisTransport(client *redis.Client) StreamTransport {
	return &redisTransport{client: client}
}

// Publish 通过XADD追加消息
func (t *redisTransport) Publish(ctx context.Context, stream string, payload []byte) error {
	return t.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{payloadField: payload},
	}).Err()
}

// GroupExists 通过XINFO GROUPS检查消费组
func (t *redisTransport) GroupExists(ctx context.Context, stream, group string) (bool, error) {
	groups, err := t.client.XInfoGroups(ctx, stream).Result()
	if err != nil {
		// stream不存在视为未创建，不是传输故障
		if strings.Contains(err.Error(), "no such key") {
			return false, nil
		}
		return false, err
	}

	for _, g := range groups {
		if g.Name == group {
			return true, nil
		}
	}
	return false, nil
}

// Fetch 通过XREADGROUP拉取新消息
func (t *redisTransport) Fetch(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]StreamMessage, error) {
	streams, err := t.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		// 阻塞超时返回空集
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	return flattenStreams(streams), nil
}

// Ack 通过XACK确认
func (t *redisTransport) Ack(ctx context.Context, stream, group string, ids ...string) error {
	return t.client.XAck(ctx, stream, group, ids...).Err()
}

// Reclaim 通过XAUTOCLAIM认领pending消息
func (t *redisTransport) Reclaim(ctx context.Context, stream, group, consumer string, minIdle time.Duration) ([]StreamMessage, error) {
	msgs, _, err := t.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    16,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	result := make([]StreamMessage, 0, len(msgs))
	for _, m := range msgs {
		if msg, ok := toStreamMessage(m); ok {
			result = append(result, msg)
		}
	}
	return result, nil
}

// flattenStreams 展平XREADGROUP结果
func flattenStreams(streams []redis.XStream) []StreamMessage {
	var result []StreamMessage
	for _, s := range streams {
		for _, m := range s.Messages {
			if msg, ok := toStreamMessage(m); ok {
				result = append(result, msg)
			}
		}
	}
	return result
}

// toStreamMessage 提取payload字段
func toStreamMessage(m redis.XMessage) (StreamMessage, bool) {
	raw, ok := m.Values[payloadField]
	if !ok {
		return StreamMessage{}, false
	}

	switch v := raw.(type) {
	case string:
		return StreamMessage{ID: m.ID, Payload: []byte(v)}, true
	case []byte:
		return StreamMessage{ID: m.ID, Payload: v}, true
	default:
		return StreamMessage{}, false
	}
}
