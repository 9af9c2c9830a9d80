package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jask/budregistry/internal/llm"
)

type fakeProvider struct {
	resp  llm.GenerateResponse
	err   error
	block chan struct{}
	calls int
}

func (f *fakeProvider) GenerateProduct(ctx context.Context, _ llm.GenerateRequest) (llm.GenerateResponse, error) {
	f.calls++
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

func (f *fakeProvider) Converse(context.Context, llm.ConverseRequest) (llm.ConverseResponse, error) {
	return llm.ConverseResponse{}, errors.New("not used")
}

func TestDraftNormalizesProviderOutput(t *testing.T) {
	t.Parallel()

	fp := &fakeProvider{resp: llm.GenerateResponse{
		Name:         " Midnight Gummies ",
		Brand:        "Kind Kitchen",
		Category:     "edible",
		Markets:      []string{"co", "XX", "MI"},
		TotalMarkets: 1,
	}}
	svc := &GeneratorService{Provider: fp, NewID: func() string { return "gen-1" }}

	p, err := svc.Draft(context.Background(), "berry gummies for sleep")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "gen-1", p.ID)
	require.Equal(t, "Midnight Gummies", p.Name)
	require.Equal(t, "Edible", p.Category)
	require.Equal(t, []string{"CO", "MI"}, p.Markets)
	require.Equal(t, 2, p.MarketCapacity)
	require.False(t, svc.Busy())
}

func TestDraftDegradesGracefully(t *testing.T) {
	t.Parallel()

	cases := map[string]*GeneratorService{
		"no provider":     {},
		"missing key":     {Provider: &fakeProvider{err: llm.ErrNoAPIKey}},
		"transport error": {Provider: &fakeProvider{err: errors.New("502 bad gateway")}},
		"invalid product": {Provider: &fakeProvider{resp: llm.GenerateResponse{Brand: "nameless"}}},
	}
	for name, svc := range cases {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			svc.Log = zap.New(core)
			p, err := svc.Draft(context.Background(), "anything")
			require.NoError(t, err)
			require.Nil(t, p)
			require.Equal(t, 1, logs.Len(), "failure is logged at warn")
		})
	}
}

func TestDraftRejectsConcurrentRequest(t *testing.T) {
	t.Parallel()

	fp := &fakeProvider{resp: llm.GenerateResponse{Name: "x"}, block: make(chan struct{})}
	svc := &GeneratorService{Provider: fp}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Draft(context.Background(), "first")
	}()
	require.Eventually(t, svc.Busy, time.Second, time.Millisecond)

	_, err := svc.Draft(context.Background(), "second")
	require.ErrorIs(t, err, ErrBusy)

	close(fp.block)
	<-done
	require.False(t, svc.Busy())
	require.Equal(t, 1, fp.calls)
}

func TestDraftRequiresDescription(t *testing.T) {
	t.Parallel()

	_, err := (&GeneratorService{}).Draft(context.Background(), "   ")
	require.Error(t, err)
}
