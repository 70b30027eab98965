package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"tixly/internal/models"
)

const (
	TopicOrderCreated   = "tixly.order.created"
	TopicOrderConfirmed = "tixly.order.confirmed"
	TopicOrderCancelled = "tixly.order.cancelled"
	TopicTicketIssued   = "tixly.ticket.issued"
	TopicEventUpdated   = "tixly.event.updated"
)

// RequiredTopics lists every topic the service publishes to; they are
// ensured at startup.
var RequiredTopics = []string{
	TopicOrderCreated,
	TopicOrderConfirmed,
	TopicOrderCancelled,
	TopicTicketIssued,
	TopicEventUpdated,
}

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// Publish writes a single keyed message to the given topic.
func (p *Producer) Publish(topic string, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

func (p *Producer) publishOrder(topic string, order models.Order) error {
	msgBytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	fmt.Printf("Publishing to Kafka [%s]: %s\n", topic, order.OrderID)
	return p.Publish(topic, order.OrderID, msgBytes)
}

func (p *Producer) PublishOrderCreated(order models.Order) error {
	return p.publishOrder(TopicOrderCreated, order)
}

func (p *Producer) PublishOrderConfirmed(order models.Order) error {
	return p.publishOrder(TopicOrderConfirmed, order)
}

func (p *Producer) PublishOrderCancelled(order models.Order) error {
	return p.publishOrder(TopicOrderCancelled, order)
}

func (p *Producer) PublishTicketIssued(ticket models.Ticket) error {
	msgBytes, err := json.Marshal(ticket.View())
	if err != nil {
		return err
	}
	return p.Publish(TopicTicketIssued, ticket.TicketID, msgBytes)
}

func (p *Producer) PublishEventUpdated(eventID string, changes []models.EventChange) error {
	payload := struct {
		EventID string               `json:"event_id"`
		Changes []models.EventChange `json:"changes"`
	}{EventID: eventID, Changes: changes}

	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Publish(TopicEventUpdated, eventID, msgBytes)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
