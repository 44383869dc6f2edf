//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/greenobird/service-booking/internal/adapter"
	"github.com/greenobird/service-booking/internal/application"
	promoDomain "github.com/greenobird/service-booking/internal/domain/promo"
	"github.com/greenobird/service-booking/internal/events"
	"github.com/greenobird/service-booking/internal/platform/database"
	"github.com/greenobird/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service   *application.BookingService
	Ledger    *repository.GormBookingRepository
	Publisher *events.BookingEventPublisher
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a migrated GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until the pool can connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(dsn, zap.NewNop())
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, repository.Migrate(db))

	// confluent-local runs KRaft natively.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, "booking.events")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires the booking service over the Postgres ledger, the
// mock gateway and the Kafka publisher.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string, rejectOverlaps bool) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	ledger := repository.NewGormBookingRepository(db)
	publisher := events.NewBookingEventPublisher(brokers, "booking.events", logger)
	svc := application.NewBookingService(
		ledger,
		adapter.NewMockRazorpayAdapter(logger),
		[]adapter.Notifier{publisher},
		adapter.NewPDFInvoiceRenderer("Test Farmstay"),
		application.BookingOptions{
			RejectOverlaps: rejectOverlaps,
			GatewayTimeout: 5 * time.Second,
			NotifyTimeout:  10 * time.Second,
		},
		logger,
	)
	t.Cleanup(func() { _ = publisher.Close() })

	return &bookingStack{Service: svc, Ledger: ledger, Publisher: publisher}
}

// bookingRequest builds a valid request for the given stay.
func bookingRequest(email, checkIn, checkOut string) application.ConfirmBookingRequest {
	return application.ConfirmBookingRequest{
		Name:     "Asha Rao",
		Email:    application.FlexValue(email),
		Phone:    "9999999999",
		CheckIn:  application.FlexValue(checkIn),
		CheckOut: application.FlexValue(checkOut),
		Guests:   "2",
		Amount:   "5000",
	}
}

// consumeBookingEvent reads booking.events until it finds the event for bookingID.
func consumeBookingEvent(t *testing.T, brokers []string, bookingID uuid.UUID, timeout time.Duration) events.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       "booking.events",
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for booking %s on booking.events", bookingID)
			}
			continue
		}
		if string(msg.Key) != bookingID.String() {
			continue
		}
		ce, err := events.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == events.BookingConfirmed {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

// seedPromo builds a promo code for seeding.
func seedPromo(t *testing.T, code string, discount int) *promoDomain.PromoCode {
	t.Helper()
	p, err := promoDomain.NewPromoCode(code, discount)
	require.NoError(t, err)
	return p
}
