package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/greenobird/service-booking/internal/domain"
	"github.com/greenobird/service-booking/internal/domain/booking"
)

const (
	// EventSource identifies this service in the event envelope.
	EventSource = "service-booking"
	// BookingConfirmed is emitted once per persisted booking.
	BookingConfirmed = "booking.confirmed"
)

// CloudEvent is the envelope published on the booking topic.
type CloudEvent struct {
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	SpecVersion     string          `json:"specversion"`
	Type            string          `json:"type"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

// ParseData decodes the event payload into v.
func (ce CloudEvent) ParseData(v interface{}) error {
	return json.Unmarshal(ce.Data, v)
}

// BookingConfirmedEvent is the payload of a booking.confirmed event.
type BookingConfirmedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	CheckIn        string    `json:"checkin"`
	CheckOut       string    `json:"checkout"`
	Guests         int       `json:"guests"`
	Amount         int64     `json:"amount"`
	PaymentOrderID string    `json:"razorpay_order_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewCloudEvent wraps data in an envelope with a fresh id.
func NewCloudEvent(source, eventType string, data interface{}) (CloudEvent, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return CloudEvent{}, fmt.Errorf("encode event data: %w", err)
	}
	return CloudEvent{
		ID:              uuid.NewString(),
		Source:          source,
		SpecVersion:     "1.0",
		Type:            eventType,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            payload,
	}, nil
}

// ParseCloudEvent decodes a message value.
func ParseCloudEvent(value []byte) (CloudEvent, error) {
	var ce CloudEvent
	if err := json.Unmarshal(value, &ce); err != nil {
		return CloudEvent{}, err
	}
	return ce, nil
}

// BookingEventPublisher publishes booking.confirmed events to Kafka so other
// systems (channel managers, housekeeping) learn about new stays.
type BookingEventPublisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewBookingEventPublisher creates a publisher writing to topic. Each Notify
// is one synchronous write, so batching is effectively off.
func NewBookingEventPublisher(brokers []string, topic string, logger *zap.Logger) *BookingEventPublisher {
	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &BookingEventPublisher{writer: writer, logger: logger}
}

// Channel names this notifier in outcomes and logs.
func (p *BookingEventPublisher) Channel() string { return "kafka" }

// Notify publishes the booking.confirmed event keyed by booking id.
func (p *BookingEventPublisher) Notify(ctx context.Context, b *booking.Booking) error {
	event := BookingConfirmedEvent{
		BookingID:      b.ID(),
		Name:           b.Name(),
		Email:          b.Email(),
		Phone:          b.Phone(),
		CheckIn:        b.CheckIn(),
		CheckOut:       b.CheckOut(),
		Guests:         b.Guests(),
		Amount:         b.Amount(),
		PaymentOrderID: b.PaymentOrderID(),
		OccurredAt:     time.Now().UTC(),
	}
	ce, err := NewCloudEvent(EventSource, BookingConfirmed, event)
	if err != nil {
		return domain.NewNotificationError(p.Channel(), err)
	}
	value, err := json.Marshal(ce)
	if err != nil {
		return domain.NewNotificationError(p.Channel(), err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(b.ID().String()),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "ce_type", Value: []byte(BookingConfirmed)},
		},
	})
	if err != nil {
		p.logger.Warn("failed to publish booking event",
			zap.String("booking_id", b.ID().String()),
			zap.Error(err),
		)
		return domain.NewNotificationError(p.Channel(), err)
	}

	p.logger.Info("booking event published",
		zap.String("type", ce.Type),
		zap.String("id", ce.ID),
		zap.String("booking_id", b.ID().String()),
	)
	return nil
}

// Close flushes and closes the writer.
func (p *BookingEventPublisher) Close() error {
	return p.writer.Close()
}
