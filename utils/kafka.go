package utils

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/byoma-kusuma/sangha-management-backend/config"
)

const DefaultEventTopic = "sangha.events"

var (
	kafkaWriter  *kafka.Writer
	kafkaBrokers []string
	kafkaTopic   string
)

// EventClosedMessage is published after a successful CloseEvent commit.
// The notification consumer fans it out to attendees.
type EventClosedMessage struct {
	EventID      uint      `json:"event_id"`
	EventName    string    `json:"event_name"`
	CategoryCode string    `json:"category_code"`
	ClosedBy     uint      `json:"closed_by"`
	ClosedAt     time.Time `json:"closed_at"`
	CreditedIDs  []uint    `json:"credited_person_ids"`
}

// InitializeKafka sets up the shared writer. Kafka is optional: when no
// brokers are configured the publisher becomes a no-op.
func InitializeKafka(cfg *config.Config) {
	if cfg.KafkaBrokers == "" {
		log.Println("ℹ️ Kafka not configured, event messages will not be published")
		return
	}

	kafkaBrokers = strings.Split(cfg.KafkaBrokers, ",")
	kafkaTopic = cfg.KafkaTopic
	if kafkaTopic == "" {
		kafkaTopic = DefaultEventTopic
	}

	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(kafkaBrokers...),
		Topic:        kafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}

	log.Printf("✅ Kafka writer initialized (brokers=%s, topic=%s)", cfg.KafkaBrokers, kafkaTopic)
}

// KafkaBrokers returns the configured broker list (nil when disabled)
func KafkaBrokers() []string {
	return kafkaBrokers
}

// KafkaTopic returns the configured topic name
func KafkaTopic() string {
	return kafkaTopic
}

// PublishEventClosed publishes an EventClosedMessage. Failures are logged,
// never surfaced: the close transaction has already committed and the
// message is advisory.
func PublishEventClosed(ctx context.Context, msg EventClosedMessage) {
	if kafkaWriter == nil {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("⚠️ Failed to marshal event closed message: %v", err)
		return
	}

	err = kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte("event.closed"),
		Value: payload,
	})
	if err != nil {
		log.Printf("⚠️ Failed to publish event closed message: %v", err)
	}
}

// CloseKafka flushes and closes the writer on shutdown
func CloseKafka() {
	if kafkaWriter != nil {
		_ = kafkaWriter.Close()
	}
}
