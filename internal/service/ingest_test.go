package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/budregistry/internal/catalog"
)

func setupIngestTest(t *testing.T) (*IngestService, *catalog.Engine, context.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	store, err := catalog.NewMemoryStore(nil)
	require.NoError(t, err)
	eng, err := catalog.NewEngine(catalog.EngineDeps{Store: store, PageSize: 24})
	require.NoError(t, err)
	return &IngestService{Catalog: eng}, eng, ctx
}

func TestImportCSV_HappyPath(t *testing.T) {
	t.Parallel()
	svc, eng, ctx := setupIngestTest(t)

	data := "name,license_number,brand,category,potency,markets,market_capacity,upc\n" +
		"Blue Dream 3.5g,C11-0000123-LIC,Pacific Bloom,flower,THC 22%,CA;NV,5,850012345001\n" +
		"Calm Tincture,NY-OCM-22-0031,Old Pal,Tincture,CBD 1000mg,NY NJ"

	res, err := svc.ImportCSV(ctx, strings.NewReader(data))
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Equal(t, 2, res.Imported)

	v := eng.View()
	require.Equal(t, 2, v.All)
	first := v.Items[0]
	require.Equal(t, "Blue Dream 3.5g", first.Name)
	require.Equal(t, "Flower", first.Category)
	require.Equal(t, []string{"CA", "NV"}, first.Markets)
	require.Equal(t, 5, first.MarketCapacity)
	require.Equal(t, "850012345001", first.UPC)
	require.Equal(t, []string{"NJ", "NY"}, v.Items[1].Markets)
}

func TestImportCSV_ErrorsAndSkips(t *testing.T) {
	t.Parallel()
	svc, eng, ctx := setupIngestTest(t)

	data := "Blue Dream,C11-1,Pacific Bloom,Flower,THC 20%,CA\n" +
		"Blue Dream again,c11-1,Pacific Bloom,Flower,THC 20%,CA\n" +
		"Too short,X-1\n" +
		",X-2,Brand,Flower,,CA\n" +
		"Bad market,X-3,Brand,Flower,,ZZ\n" +
		"Bad capacity,X-4,Brand,Flower,,CA,lots\n" +
		"No license,,Brand,Flower,,CA\n"

	res, err := svc.ImportCSV(ctx, strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 5)
	require.Equal(t, 1, eng.View().All)
}
