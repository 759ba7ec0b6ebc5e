package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/skyresults/internal/domain"
	"github.com/segmentio/kafka-go"
)

const EventFlightSelected = "flight_selected"

// SelectionEvent is published when a user picks a flight to book.
type SelectionEvent struct {
	Type        string    `json:"type"`
	Token       string    `json:"token"`
	Airline     string    `json:"airline"`
	FlightIATA  string    `json:"flight_iata"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartureAt time.Time `json:"departure_at"`
	Price       int       `json:"price"`
	SelectedAt  time.Time `json:"selected_at"`
}

// Selection converts the event into the row the worker records.
func (e SelectionEvent) Selection() domain.Selection {
	return domain.Selection{
		Token:       e.Token,
		Airline:     e.Airline,
		FlightIATA:  e.FlightIATA,
		Origin:      e.Origin,
		Destination: e.Destination,
		DepartureAt: e.DepartureAt,
		Price:       e.Price,
		SelectedAt:  e.SelectedAt,
	}
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	slog.DebugContext(ctx, "published to kafka", "topic", topic, "key", key)
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and reads its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return ErrNoBrokers
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	slog.InfoContext(ctx, "connected to kafka", "partitions", len(partitions))
	return nil
}
