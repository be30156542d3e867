package produce

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ThumbnailPrewarmQueue carries requests to pre-generate the default
	// thumbnail sizes for a freshly committed image attachment.
	ThumbnailPrewarmQueue = "attachment.thumbnail.prewarm"
)

type Produce struct {
	Thumbnail *ThumbnailProduce
}

func InitProduce(channel *amqp.Channel) *Produce {
	if channel == nil {
		panic("RabbitMQ channel is nil")
	}

	_, err := channel.QueueDeclare(
		ThumbnailPrewarmQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to declare queue %s: %v", ThumbnailPrewarmQueue, err))
	}

	return &Produce{
		Thumbnail: NewThumbnailProduce(channel),
	}
}
