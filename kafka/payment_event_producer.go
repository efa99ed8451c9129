package kafka

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"payment-service/models"

	"github.com/segmentio/kafka-go"
)

// ProducerAPI lets services publish payment events without depending on
// the concrete Kafka writer.
type ProducerAPI interface {
	SendPaymentEvent(event models.PaymentEvent) error
}

type PaymentEventProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewPaymentEventProducer(brokers []string, topic string) *PaymentEventProducer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Printf("[PaymentService][KafkaProducer] initialized topic=%s brokers=%v", topic, brokers)
	return &PaymentEventProducer{writer: w, topic: topic}
}

func (p *PaymentEventProducer) SendPaymentEvent(event models.PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.PaymentID, 10)),
		Value: data,
	}

	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		log.Printf("[PaymentService] ❌ Failed to send payment event: %v", err)
		return err
	}

	log.Printf("[PaymentService] 📤 Sent PaymentEvent type=%s payment_id=%d", event.Type, event.PaymentID)
	return nil
}

func (p *PaymentEventProducer) Close() {
	_ = p.writer.Close()
	log.Println("[PaymentService] 🔌 Kafka producer closed")
}
