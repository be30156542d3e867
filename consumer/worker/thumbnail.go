package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-attachment-service/entity"
	"github.com/tnqbao/gau-attachment-service/infra"
	"github.com/tnqbao/gau-attachment-service/infra/produce"
	"github.com/tnqbao/gau-attachment-service/repository"
	"github.com/tnqbao/gau-attachment-service/thumbnailer"
)

type ThumbnailConsumer struct {
	channel    *amqp.Channel
	infra      *infra.Infra
	repository *repository.Repository
}

func NewThumbnailConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository) *ThumbnailConsumer {
	return &ThumbnailConsumer{
		channel:    channel,
		infra:      infra,
		repository: repo,
	}
}

func (c *ThumbnailConsumer) Start(ctx context.Context) error {
	if err := c.startPrewarmConsumer(ctx); err != nil {
		return fmt.Errorf("failed to start thumbnail prewarm consumer: %w", err)
	}
	return nil
}

func (c *ThumbnailConsumer) startPrewarmConsumer(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.ThumbnailPrewarmQueue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register thumbnail prewarm consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Thumbnail Consumer] Started listening for prewarm jobs on queue: %s", produce.ThumbnailPrewarmQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Thumbnail Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Thumbnail Consumer] Channel closed")
					return
				}
				c.handlePrewarm(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *ThumbnailConsumer) handlePrewarm(ctx context.Context, msg amqp.Delivery) {
	c.infra.Logger.InfoWithContextf(ctx, "[Thumbnail Consumer] Received message: %s", string(msg.Body))

	var payload produce.ThumbnailPrewarmMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Thumbnail Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	// Generation is long-running relative to the HTTP request that queued it,
	// so run against a background context.
	bgCtx := context.Background()

	maxRetries := 3
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = c.prewarmSizes(bgCtx, payload)
		if err == nil {
			c.infra.Logger.InfoWithContextf(ctx, "[Thumbnail Consumer] Prewarmed %d sizes for %s/%s/%s", len(payload.Sizes), payload.ObjectType, payload.ObjectID, payload.FileName)
			_ = msg.Ack(false)
			return
		}

		// A missing or undecodable source never heals on retry: the file was
		// deleted before the job ran, or it is not a real image. Drop the job.
		if errors.Is(err, entity.ErrNotFound) || errors.Is(err, thumbnailer.ErrUnsupportedImageFormat) {
			c.infra.Logger.WarningWithContextf(ctx, "[Thumbnail Consumer] Skipping prewarm for %s/%s/%s: %v", payload.ObjectType, payload.ObjectID, payload.FileName, err)
			_ = msg.Ack(false)
			return
		}

		c.infra.Logger.ErrorWithContextf(ctx, err, "[Thumbnail Consumer] Attempt %d/%d failed: %v", attempt, maxRetries, err)

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	c.infra.Logger.ErrorWithContextf(ctx, err, "[Thumbnail Consumer] Failed after %d attempts, requeueing message", maxRetries)
	_ = msg.Nack(false, true)
}

func (c *ThumbnailConsumer) prewarmSizes(ctx context.Context, payload produce.ThumbnailPrewarmMessage) error {
	for _, size := range payload.Sizes {
		_, _, err := c.repository.ThumbnailRepo.GetThumbnail(ctx, payload.ObjectType, payload.ObjectID, payload.FileName, size.Width, size.Height, size.Align)
		if err != nil {
			return fmt.Errorf("failed to prewarm size %s: %w", size.String(), err)
		}
	}
	return nil
}
