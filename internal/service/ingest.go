package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/budregistry/internal/product"
)

// Registrar is the catalog surface the importer writes through.
type Registrar interface {
	Get(id string) (product.DashboardProduct, bool)
	Register(p product.Product) (product.DashboardProduct, error)
}

// IngestService handles CSV product imports into the catalog.
type IngestService struct {
	Catalog Registrar
	Log     *zap.Logger
}

type IngestResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// CSV columns: name, license_number, brand, category, potency, markets,
// market_capacity, upc. Markets are separated by ';' or spaces. A header
// row starting with "name" is skipped. Rows whose license number is already
// in the catalog are skipped.
func (s *IngestService) ImportCSV(ctx context.Context, r io.Reader) (IngestResult, error) {
	res := IngestResult{}
	if s.Catalog == nil {
		return res, errors.New("ingest: catalog not configured")
	}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue
		}
		if len(rec) < 6 { // name, license_number, brand, category, potency, markets
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected at least 6 columns", line))
			continue
		}
		p := product.Product{
			Name:          rec[0],
			LicenseNumber: rec[1],
			Brand:         rec[2],
			Category:      rec[3],
			Potency:       rec[4],
			Markets:       splitMarkets(rec[5]),
		}
		if len(rec) > 6 && strings.TrimSpace(rec[6]) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(rec[6]))
			if err != nil || n < 0 {
				res.Errors = append(res.Errors, fmt.Errorf("line %d market_capacity: invalid %q", line, rec[6]))
				continue
			}
			p.MarketCapacity = n
		}
		if len(rec) > 7 {
			p.UPC = rec[7]
		}
		license := strings.TrimSpace(p.LicenseNumber)
		if license == "" {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: license_number required", line))
			continue
		}
		p.ID = deterministicProductID(license)
		if _, exists := s.Catalog.Get(p.ID); exists {
			res.Skipped++
			continue
		}
		if _, err := s.Catalog.Register(p); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		res.Imported++
	}
	s.logger().Info("csv import finished",
		zap.Int("imported", res.Imported), zap.Int("skipped", res.Skipped), zap.Int("errors", len(res.Errors)))
	return res, nil
}

func (s *IngestService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// splitMarkets keeps unknown codes so validation can report them.
func splitMarkets(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ' ' || r == '|' })
}

func deterministicProductID(license string) string {
	key := strings.ToUpper(strings.TrimSpace(license))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
