package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/greenobird/service-booking/internal/domain"
	promoDomain "github.com/greenobird/service-booking/internal/domain/promo"
)

// CSVPromoRepository reads a "code,discount" table with a header row.
// The file is read on every lookup so edits apply without a restart.
type CSVPromoRepository struct {
	path   string
	logger *zap.Logger
}

// NewCSVPromoRepository creates a repository over the CSV file at path.
func NewCSVPromoRepository(path string, logger *zap.Logger) *CSVPromoRepository {
	return &CSVPromoRepository{path: path, logger: logger}
}

// FindByCode scans the table for code. A missing file is an empty table.
func (r *CSVPromoRepository) FindByCode(ctx context.Context, code string) (*promoDomain.PromoCode, error) {
	key := promoDomain.Normalize(code)
	codes, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range codes {
		if p.Matches(key) {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("PromoCode", key)
}

// LoadAll parses the whole table. Rows with a bad discount are skipped.
func (r *CSVPromoRepository) LoadAll(ctx context.Context) ([]*promoDomain.PromoCode, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.NewUnavailableError("promo table", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewUnavailableError("promo table", err)
	}
	codeCol, discountCol, err := promoColumns(header)
	if err != nil {
		return nil, domain.NewUnavailableError("promo table", err)
	}

	var codes []*promoDomain.PromoCode
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewUnavailableError("promo table", err)
		}
		if len(row) <= codeCol || len(row) <= discountCol {
			continue
		}
		discount, err := strconv.Atoi(strings.TrimSpace(row[discountCol]))
		if err != nil {
			r.logger.Warn("skipping promo row with bad discount", zap.Int("line", line), zap.String("discount", row[discountCol]))
			continue
		}
		p, err := promoDomain.NewPromoCode(row[codeCol], discount)
		if err != nil {
			r.logger.Warn("skipping promo row", zap.Int("line", line), zap.Error(err))
			continue
		}
		codes = append(codes, p)
	}
	return codes, nil
}

func promoColumns(header []string) (int, int, error) {
	codeCol, discountCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "code":
			codeCol = i
		case "discount":
			discountCol = i
		}
	}
	if codeCol < 0 || discountCol < 0 {
		return 0, 0, fmt.Errorf("header must contain code and discount columns, got %v", header)
	}
	return codeCol, discountCol, nil
}
