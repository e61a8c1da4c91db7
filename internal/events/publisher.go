package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/eatsapp/order-service/internal/models/order"
	"github.com/segmentio/kafka-go"
)

// Event types published on the order stream.
const (
	OrderCreated       = "order_created"
	OrderCancelled     = "order_cancelled"
	OrderStatusChanged = "order_status_changed"
)

// OrderEvent notifies downstream consumers (restaurant displays,
// courier dispatch) about a committed order transition.
type OrderEvent struct {
	Timestamp    time.Time    `json:"timestamp"`
	Type         string       `json:"type"`
	OrderID      string       `json:"order_id"`
	Status       order.Status `json:"status"`
	RestaurantID int          `json:"restaurant_id"`
	CustomerID   int          `json:"customer_id"`
}

type Publisher interface {
	PublishOrderEvent(ctx context.Context, e OrderEvent) error
}

// KafkaPublisher writes order events keyed by restaurant id so that
// a single restaurant's events stay ordered within one partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

var _ Publisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, e OrderEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(e.RestaurantID)),
		Value: payload,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
