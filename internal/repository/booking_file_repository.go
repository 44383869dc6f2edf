package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/greenobird/service-booking/internal/domain"
	bookingDomain "github.com/greenobird/service-booking/internal/domain/booking"
)

// bookingRecord is the on-disk shape of one ledger entry. Field names match the
// JSON the booking page posts, so ledgers written before ids existed still load.
// Older rows stored the raw payload, so every field tolerates numbers.
type bookingRecord struct {
	ID                looseText       `json:"id,omitempty"`
	Name              looseText       `json:"name"`
	Email             looseText       `json:"email"`
	Phone             looseText       `json:"phone"`
	CheckIn           looseText       `json:"checkin"`
	CheckOut          looseText       `json:"checkout"`
	Guests            json.RawMessage `json:"guests"`
	Amount            json.RawMessage `json:"amount"`
	PromoCode         looseText       `json:"promo_code,omitempty"`
	RazorpayOrderID   looseText       `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID looseText       `json:"razorpay_payment_id,omitempty"`
	CreatedAt         looseText       `json:"created_at,omitempty"`
}

// looseText decodes any JSON scalar as its text. It is written back as a string.
type looseText string

// UnmarshalJSON implements json.Unmarshaler.
func (t *looseText) UnmarshalJSON(data []byte) error {
	*t = looseText(rawNumber(data))
	return nil
}

// FileBookingRepository keeps the ledger resident in memory and writes it
// through to a JSON array file on every append.
type FileBookingRepository struct {
	path    string
	logger  *zap.Logger
	mu      sync.RWMutex
	records []*bookingDomain.Booking
	corrupt error
	closed  bool
}

// OpenFileBookingRepository loads the ledger at path. A missing file is an
// empty ledger. A file that does not parse leaves the repository in a corrupt
// state: reads and appends fail with a store-corrupt error and the file is
// left untouched.
func OpenFileBookingRepository(path string, logger *zap.Logger) (*FileBookingRepository, error) {
	r := &FileBookingRepository{path: path, logger: logger}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return r, nil
	case err != nil:
		return nil, domain.NewUnavailableError("booking store", err)
	}

	records, err := decodeLedger(data, logger)
	if err != nil {
		r.corrupt = domain.NewStoreCorruptError(path, err)
		logger.Error("booking ledger cannot be parsed; refusing writes", zap.String("path", path), zap.Error(err))
		return r, nil
	}
	r.records = records
	logger.Info("booking ledger loaded", zap.String("path", path), zap.Int("records", len(records)))
	return r, nil
}

// Append adds one booking and persists the whole ledger atomically.
func (r *FileBookingRepository) Append(ctx context.Context, b *bookingDomain.Booking) error {
	return r.AppendIf(ctx, b, nil)
}

// AppendIf appends b if check accepts the current ledger.
func (r *FileBookingRepository) AppendIf(ctx context.Context, b *bookingDomain.Booking, check bookingDomain.AppendCheck) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usable(); err != nil {
		return err
	}
	if check != nil {
		if err := check(r.snapshot()); err != nil {
			return err
		}
	}

	next := make([]*bookingDomain.Booking, len(r.records), len(r.records)+1)
	copy(next, r.records)
	next = append(next, b)

	if err := r.persist(next); err != nil {
		return domain.NewUnavailableError("booking store", err)
	}
	r.records = next
	return nil
}

// ListAll returns a snapshot of the ledger in insertion order.
func (r *FileBookingRepository) ListAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.usable(); err != nil {
		return nil, err
	}
	return r.snapshot(), nil
}

// FindFirstByEmail returns the earliest booking made with email.
func (r *FileBookingRepository) FindFirstByEmail(ctx context.Context, email string) (*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.usable(); err != nil {
		return nil, err
	}
	for _, b := range r.records {
		if b.MatchesEmail(email) {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", email)
}

// Ping reports the corrupt state to readiness checks.
func (r *FileBookingRepository) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usable()
}

// Close stops further use. The file is already durable after each append.
func (r *FileBookingRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *FileBookingRepository) usable() error {
	if r.closed {
		return domain.NewUnavailableError("booking store", errors.New("closed"))
	}
	return r.corrupt
}

func (r *FileBookingRepository) snapshot() []*bookingDomain.Booking {
	out := make([]*bookingDomain.Booking, len(r.records))
	copy(out, r.records)
	return out
}

// persist writes records to a sibling temp file, syncs it and renames it over
// the ledger, so a crash leaves either the old or the new ledger on disk.
func (r *FileBookingRepository) persist(records []*bookingDomain.Booking) error {
	out := make([]bookingRecord, len(records))
	for i, b := range records {
		out[i] = toRecord(b)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// decodeLedger fails only when data is not a JSON array. Rows that cannot be
// read are kept with empty fields so the calendar skips them one by one.
func decodeLedger(data []byte, logger *zap.Logger) ([]*bookingDomain.Booking, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	records := make([]*bookingDomain.Booking, len(rows))
	for i, row := range rows {
		var rec bookingRecord
		if err := json.Unmarshal(row, &rec); err != nil {
			logger.Warn("unreadable ledger row kept without dates", zap.Int("index", i), zap.Error(err))
			rec = bookingRecord{}
		}
		records[i] = fromRecord(&rec)
	}
	return records, nil
}

func toRecord(b *bookingDomain.Booking) bookingRecord {
	rec := bookingRecord{
		Name:              looseText(b.Name()),
		Email:             looseText(b.Email()),
		Phone:             looseText(b.Phone()),
		CheckIn:           looseText(b.CheckIn()),
		CheckOut:          looseText(b.CheckOut()),
		Guests:            json.RawMessage(fmt.Sprintf("%d", b.Guests())),
		Amount:            json.RawMessage(fmt.Sprintf("%d", b.Amount())),
		PromoCode:         looseText(b.PromoCode()),
		RazorpayOrderID:   looseText(b.PaymentOrderID()),
		RazorpayPaymentID: looseText(b.PaymentID()),
	}
	if b.ID() != uuid.Nil {
		rec.ID = looseText(b.ID().String())
	}
	if createdAt := b.CreatedAt(); !createdAt.IsZero() {
		rec.CreatedAt = looseText(createdAt.Format(time.RFC3339Nano))
	}
	return rec
}

// fromRecord is lenient: legacy rows carry guests and amount as strings or
// numbers and have no id or timestamp.
func fromRecord(m *bookingRecord) *bookingDomain.Booking {
	id, err := uuid.Parse(string(m.ID))
	if err != nil {
		id = uuid.Nil
	}
	createdAt, err := time.Parse(time.RFC3339Nano, string(m.CreatedAt))
	if err != nil {
		createdAt = time.Time{}
	}
	amount, _ := bookingDomain.ParseAmount(rawNumber(m.Amount))
	guests, _ := parseInt(rawNumber(m.Guests))

	return bookingDomain.Reconstitute(
		id,
		string(m.Name), string(m.Email), string(m.Phone), string(m.CheckIn), string(m.CheckOut),
		guests,
		amount,
		string(m.PromoCode), string(m.RazorpayOrderID), string(m.RazorpayPaymentID),
		createdAt,
	)
}

// rawNumber returns the text of a JSON number or string, or "" for null.
func rawNumber(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func parseInt(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
