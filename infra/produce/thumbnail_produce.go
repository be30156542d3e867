package produce

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-attachment-service/entity"
)

// ThumbnailPrewarmMessage asks the consumer to generate thumbnails for one
// committed image file at the listed sizes. Generation goes through the
// regular cache path, so duplicate messages are harmless.
type ThumbnailPrewarmMessage struct {
	ObjectType string                 `json:"object_type"`
	ObjectID   string                 `json:"object_id"`
	FileName   string                 `json:"file_name"`
	Sizes      []entity.ThumbnailSize `json:"sizes"`
}

type ThumbnailProduce struct {
	channel *amqp.Channel
}

func NewThumbnailProduce(channel *amqp.Channel) *ThumbnailProduce {
	return &ThumbnailProduce{channel: channel}
}

func (p *ThumbnailProduce) PublishThumbnailPrewarm(ctx context.Context, msg ThumbnailPrewarmMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal prewarm message: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		"",                    // default exchange
		ThumbnailPrewarmQueue, // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish prewarm message: %w", err)
	}

	return nil
}
