package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/byoma-kusuma/sangha-management-backend/utils"
)

// StartKafkaConsumer runs a background reader on the events topic,
// turning event-closed messages into in-app and push notifications.
// It is a no-op when kafka is not configured. A malformed or failed
// message is logged and skipped; the engine does not depend on it.
func StartKafkaConsumer(svc Service) {
	brokers := utils.KafkaBrokers()
	if len(brokers) == 0 {
		log.Println("⚠️  Kafka not configured, event notifications disabled")
		return
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    utils.KafkaTopic(),
		GroupID:  "sangha-notifications",
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	go func() {
		defer reader.Close()
		ctx := context.Background()
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				log.Printf("❌ Kafka consumer stopped: %v\n", err)
				return
			}

			var msg utils.EventClosedMessage
			if err := json.Unmarshal(m.Value, &msg); err != nil {
				log.Printf("⚠️  skipping malformed event message: %v\n", err)
				continue
			}

			if err := svc.HandleEventClosed(ctx, msg); err != nil {
				log.Printf("⚠️  could not notify for event %d: %v\n", msg.EventID, err)
			}
		}
	}()

	log.Println("✅ Kafka consumer started for topic:", utils.KafkaTopic())
}
