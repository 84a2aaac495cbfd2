// Package messaging 提供消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storybook-media-api/internal/domain/entity"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	stream Stream
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &Producer{
		client: client,
		stream: StreamMediaEvents,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type": msg.Type,
			"data": string(data),
		},
	}).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishBatchCompleted 发布批量生成结束事件
func (p *Producer) PublishBatchCompleted(ctx context.Context, evt *entity.BatchCompletedEvent) (string, error) {
	msg, err := NewMessage("", string(entity.MediaEventBatchCompleted), evt.BookID, evt)
	if err != nil {
		return "", err
	}
	msg.SetMetadata("operation", evt.Operation)
	msg.SetMetadata("failed", strconv.Itoa(evt.Failed))
	return p.Publish(ctx, p.stream, msg)
}

// PublishBookPublished 发布书籍发布事件
func (p *Producer) PublishBookPublished(ctx context.Context, evt *entity.BookPublishedEvent) (string, error) {
	msg, err := NewMessage("", string(entity.MediaEventBookPublished), evt.BookID, evt)
	if err != nil {
		return "", err
	}
	msg.SetMetadata("has_audio", strconv.FormatBool(evt.HasAudio))
	return p.Publish(ctx, p.stream, msg)
}
