package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/budregistry/internal/llm"
	"github.com/jask/budregistry/internal/product"
)

// ErrBusy is returned when a draft is requested while another is in flight.
var ErrBusy = errors.New("generator: request already in flight")

// GeneratorService drafts products from free text. It is best-effort
// enrichment: provider failures produce no product, never an error.
type GeneratorService struct {
	Provider llm.Provider
	Log      *zap.Logger
	NewID    func() string

	busy atomic.Bool
}

// Busy reports whether a draft request is in flight.
func (s *GeneratorService) Busy() bool {
	return s.busy.Load()
}

// Draft asks the provider for a product. The only errors are ErrBusy and an
// empty description; everything else is logged and yields nil.
func (s *GeneratorService) Draft(ctx context.Context, description string) (*product.Product, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errors.New("generator: description is required")
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	log := s.logger()
	if s.Provider == nil {
		log.Warn("product generation skipped", zap.Error(llm.ErrNoAPIKey))
		return nil, nil
	}
	resp, err := s.Provider.GenerateProduct(ctx, llm.GenerateRequest{
		Description: description,
		Markets:     product.Markets,
		Categories:  product.Categories,
	})
	if err != nil {
		log.Warn("product generation failed", zap.Error(err))
		return nil, nil // degrade gracefully
	}

	p := resp.Product()
	p.Markets = product.KnownMarkets(p.Markets)
	p = product.Normalize(p)
	if err := product.Validate(p); err != nil {
		log.Warn("generated product rejected", zap.Error(err))
		return nil, nil
	}
	if p.ID == "" {
		p.ID = s.newID()
	}
	log.Info("product drafted", zap.String("id", p.ID), zap.String("name", p.Name), zap.Int("markets", p.TotalMarkets()))
	return &p, nil
}

func (s *GeneratorService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *GeneratorService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
