package events

import (
	"context"
	"errors"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BookingEventHandler receives each decoded booking.confirmed event.
type BookingEventHandler func(ctx context.Context, event BookingConfirmedEvent) error

// BookingEventConsumer reads booking events back from the booking topic.
type BookingEventConsumer struct {
	reader *kafkago.Reader
	logger *zap.Logger
}

// NewBookingEventConsumer creates a consumer in its own group. fromStart
// replays the topic; otherwise only events published after joining are read.
func NewBookingEventConsumer(brokers []string, groupID, topic string, fromStart bool, logger *zap.Logger) *BookingEventConsumer {
	startOffset := kafkago.LastOffset
	if fromStart {
		startOffset = kafkago.FirstOffset
	}
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: startOffset,
	})
	return &BookingEventConsumer{reader: reader, logger: logger}
}

// Start consumes until ctx is cancelled or handle returns an error.
// Messages that are not booking.confirmed events are skipped.
func (c *BookingEventConsumer) Start(ctx context.Context, handle BookingEventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := c.handleMessage(ctx, msg, handle); err != nil {
			return err
		}
	}
}

func (c *BookingEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message, handle BookingEventHandler) error {
	event, err := DecodeBookingConfirmed(msg.Value)
	switch {
	case errors.Is(err, errIgnoredEvent):
		c.logger.Debug("ignoring unhandled booking event type", zap.String("key", string(msg.Key)))
		return nil
	case err != nil:
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil
	}

	c.logger.Debug("received booking event", zap.String("booking_id", event.BookingID.String()))
	return handle(ctx, event)
}

// Close closes the underlying reader.
func (c *BookingEventConsumer) Close() error {
	return c.reader.Close()
}

var errIgnoredEvent = errors.New("not a booking.confirmed event")

// DecodeBookingConfirmed parses a message value into its booking.confirmed payload.
func DecodeBookingConfirmed(value []byte) (BookingConfirmedEvent, error) {
	ce, err := ParseCloudEvent(value)
	if err != nil {
		return BookingConfirmedEvent{}, err
	}
	if !strings.EqualFold(ce.Type, BookingConfirmed) {
		return BookingConfirmedEvent{}, errIgnoredEvent
	}
	var event BookingConfirmedEvent
	if err := ce.ParseData(&event); err != nil {
		return BookingConfirmedEvent{}, err
	}
	return event, nil
}
