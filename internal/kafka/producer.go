package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-nft-ticketing/internal/config"
	"ms-nft-ticketing/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, Topics: topics}
}

// Publish writes a single message to the given topic.
func (p *Producer) Publish(topic, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

// PublishTicketMinted streams the mint outcome to Kafka
func (p *Producer) PublishTicketMinted(ticket models.Ticket) error {
	msgBytes, err := json.Marshal(ticket)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [%s]: ticket %s\n", p.Topics.TicketMinted, ticket.ID)

	return p.Publish(p.Topics.TicketMinted, ticket.ID, msgBytes)
}

// PublishEventCreated streams the event registration to Kafka
func (p *Producer) PublishEventCreated(event models.Event) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [%s]: event %s\n", p.Topics.EventCreated, event.ID)

	return p.Publish(p.Topics.EventCreated, event.ID, msgBytes)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
