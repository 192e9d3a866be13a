package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type stubCatalog struct {
	entries map[string]CatalogEntry
}

func (s *stubCatalog) CatalogEntry(_ context.Context, id string) (CatalogEntry, error) {
	entry, ok := s.entries[id]
	if !ok {
		return CatalogEntry{}, errors.New("item não encontrado")
	}
	return entry, nil
}

type stubSegmentations struct {
	bySupplier map[string][]Segmentation
}

func (s *stubSegmentations) ActiveSegmentations(_ context.Context, supplierID string) ([]Segmentation, error) {
	return s.bySupplier[supplierID], nil
}

type stubDimensions struct {
	byProduct map[string]FreightInfo
}

func (s *stubDimensions) FreightInfo(_ context.Context, productID string) (FreightInfo, error) {
	info, ok := s.byProduct[productID]
	if !ok {
		return FreightInfo{}, errors.New("produto não encontrado")
	}
	return info, nil
}

type QuoteServiceSuite struct {
	suite.Suite
	service *QuoteService
}

func TestQuoteServiceSuite(t *testing.T) {
	suite.Run(t, new(QuoteServiceSuite))
}

func (s *QuoteServiceSuite) SetupTest() {
	table := ParsePriceTable([]byte(`{
		"estados": {"SP": [{"dataInicio": "2024-01-01", "valor": 100}]},
		"padrao": 90
	}`))
	s.Require().NotNil(table)

	catalog := &stubCatalog{entries: map[string]CatalogEntry{
		"ITEM-MILHO": {Table: table, BasePrice: dec("80")},
		"ITEM-NU":    {BasePrice: dec("80")},
	}}

	segs := &stubSegmentations{bySupplier: map[string][]Segmentation{
		"SUP-1": segFixture(),
	}}

	seedDims := dimsFixture()
	seedDims.ThousandUnitWeight = decPtr("300")
	dims := &stubDimensions{byProduct: map[string]FreightInfo{
		"PROD-MILHO": {Dims: seedDims, CategoryName: CategoriaSementes, UnitKind: CategoriaSementes},
	}}

	s.service = NewQuoteService(catalog, segs, dims, zerolog.Nop())
}

func (s *QuoteServiceSuite) request() QuoteRequest {
	return QuoteRequest{
		CatalogItemID: "ITEM-MILHO",
		ProductID:     "PROD-MILHO",
		SupplierID:    "SUP-1",
		ProducerID:    "PRD-9",
		CategoryID:    "CAT-MILHO",
		StateCode:     "SP",
		OnDate:        date(2024, 5, 1),
		Area:          dec("120"),
		WeightMode:    WeightNominal,
	}
}

func (s *QuoteServiceSuite) TestQuoteCombinesThreeResolvers() {
	quote, err := s.service.Quote(context.Background(), s.request())
	s.Require().NoError(err)

	// SP em 2024-05-01 → 100; área 120 → grupo "Grande Produtor" → 10%;
	// PMS 300g × 60000 unidades → 18 kg.
	s.True(quote.BasePrice.Equal(dec("100")))
	s.True(quote.UnitPrice.Equal(dec("90")), "esperado 90, obtido %s", quote.UnitPrice)
	s.True(quote.FreightWeight.Equal(dec("18")))
	s.Equal("Grande Produtor", quote.Discount.GroupName)
}

func (s *QuoteServiceSuite) TestQuoteFallsToPadraoForOtherStates() {
	req := s.request()
	req.StateCode = "RJ"

	quote, err := s.service.Quote(context.Background(), req)
	s.Require().NoError(err)
	s.True(quote.BasePrice.Equal(dec("90")))
	s.True(quote.UnitPrice.Equal(dec("81")))
}

func (s *QuoteServiceSuite) TestQuoteWithoutTableUsesBasePrice() {
	req := s.request()
	req.CatalogItemID = "ITEM-NU"

	quote, err := s.service.Quote(context.Background(), req)
	s.Require().NoError(err)
	s.True(quote.BasePrice.Equal(dec("80")))
	s.True(quote.UnitPrice.Equal(dec("72")))
}

func (s *QuoteServiceSuite) TestQuoteWithoutSegmentationsKeepsFullPrice() {
	req := s.request()
	req.SupplierID = "SUP-DESCONHECIDO"

	quote, err := s.service.Quote(context.Background(), req)
	s.Require().NoError(err)
	s.True(quote.Discount.Percent.IsZero())
	s.True(quote.UnitPrice.Equal(quote.BasePrice))
	s.Equal("no segmentation for supplier", quote.Discount.Note)
}

func (s *QuoteServiceSuite) TestQuotePropagatesCollaboratorErrors() {
	req := s.request()
	req.CatalogItemID = "ITEM-FANTASMA"

	_, err := s.service.Quote(context.Background(), req)
	s.Error(err)
	s.Contains(err.Error(), "ITEM-FANTASMA")
}

func (s *QuoteServiceSuite) TestQuoteRejectsNegativeArea() {
	req := s.request()
	req.Area = dec("-10")

	_, err := s.service.Quote(context.Background(), req)
	s.Require().Error(err)
	s.ErrorIs(err, ErrInvalidArea)
}
