package yaml

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-pricing/pkg/pricing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func loadFixture(t *testing.T) *Dataset {
	t.Helper()
	ds, err := LoadDataset(filepath.Join("testdata", "dataset.yaml"))
	require.NoError(t, err)
	return ds
}

func TestLoadDataset_MissingFile(t *testing.T) {
	_, err := LoadDataset(filepath.Join("testdata", "nao-existe.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nao-existe.yaml")
}

func TestLoadDataset_Suppliers(t *testing.T) {
	ds := loadFixture(t)

	segs, err := ds.ActiveSegmentations(context.Background(), "SUP-001")
	require.NoError(t, err)
	require.Len(t, segs, 1, "a segmentação inativa não deve aparecer")

	seg := segs[0]
	assert.Equal(t, "seg-nacional", seg.ID)
	assert.True(t, seg.IsDefault)
	require.Len(t, seg.Groups, 2)
	assert.True(t, seg.Groups[0].AreaMin.Equal(dec("0")))
	require.NotNil(t, seg.Groups[0].AreaMax)
	assert.True(t, seg.Groups[0].AreaMax.Equal(dec("50")))
	assert.Nil(t, seg.Groups[1].AreaMax)

	// Segmentação sem ID no arquivo ganha um gerado.
	all := ds.Segmentations("SUP-001")
	require.Len(t, all, 2)
	assert.NotEmpty(t, all[1].ID)
}

func TestLoadDataset_CatalogGoesThroughLenientParse(t *testing.T) {
	ds := loadFixture(t)

	entry, err := ds.CatalogEntry(context.Background(), "ITEM-MILHO")
	require.NoError(t, err)
	require.NotNil(t, entry.Table)

	onDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, pricing.ResolvePrice(entry.Table, entry.BasePrice, "SP", onDate).Equal(dec("100")))
	assert.True(t, pricing.ResolvePrice(entry.Table, entry.BasePrice, "RJ", onDate).Equal(dec("90")))

	// Item sem tabela: nil, resolve direto pelo preço base.
	semTabela, err := ds.CatalogEntry(context.Background(), "ITEM-ADUBO")
	require.NoError(t, err)
	assert.Nil(t, semTabela.Table)
	assert.True(t, semTabela.BasePrice.Equal(dec("55.90")))
}

func TestLoadDataset_Products(t *testing.T) {
	ds := loadFixture(t)

	info, err := ds.FreightInfo(context.Background(), "PROD-MILHO")
	require.NoError(t, err)
	assert.Equal(t, pricing.CategoriaSementes, info.CategoryName)
	require.NotNil(t, info.Dims.ThousandUnitWeight)
	assert.True(t, info.Dims.ThousandUnitWeight.Equal(dec("300")))

	_, err = ds.FreightInfo(context.Background(), "PROD-FANTASMA")
	assert.Error(t, err)
}

// Cenário de aceitação: o dataset alimenta o serviço de cotação de ponta a
// ponta, reproduzindo o cenário real de linha de pedido.
func TestDataset_EndToEndQuote(t *testing.T) {
	ds := loadFixture(t)
	svc := pricing.NewQuoteService(ds, ds, ds, zerolog.Nop())

	quote, err := svc.Quote(context.Background(), pricing.QuoteRequest{
		CatalogItemID: "ITEM-MILHO",
		ProductID:     "PROD-MILHO",
		SupplierID:    "SUP-001",
		ProducerID:    "PRD-42",
		CategoryID:    "CAT-MILHO",
		StateCode:     "SP",
		OnDate:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Area:          dec("120"),
		WeightMode:    pricing.WeightNominal,
	})
	require.NoError(t, err)

	assert.True(t, quote.BasePrice.Equal(dec("100")))
	assert.True(t, quote.UnitPrice.Equal(dec("90")), "esperado 90, obtido %s", quote.UnitPrice)
	assert.True(t, quote.FreightWeight.Equal(dec("18")))
	assert.Equal(t, "Grande Produtor", quote.Discount.GroupName)
}
