package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CatalogEntry é o que o catálogo fornece para um item: a tabela de preços
// (opcional) e o preço base que viaja junto como último recurso.
type CatalogEntry struct {
	Table     *PriceTable
	BasePrice decimal.Decimal
}

// FreightInfo é o que o cadastro de produto fornece para o cálculo de frete.
type FreightInfo struct {
	Dims         ProductDimensions
	CategoryName string
	UnitKind     string
}

// CatalogLookup define o contrato para obter os dados de preço de um item de
// catálogo (de banco, cache, rede — decisão de quem implementa).
type CatalogLookup interface {
	CatalogEntry(ctx context.Context, catalogItemID string) (CatalogEntry, error)
}

// SegmentationRepository define o contrato para obter as segmentações ativas
// de um fornecedor, com grupos e descontos já aninhados.
type SegmentationRepository interface {
	ActiveSegmentations(ctx context.Context, supplierID string) ([]Segmentation, error)
}

// DimensionLookup define o contrato para obter o registro físico de um produto.
type DimensionLookup interface {
	FreightInfo(ctx context.Context, productID string) (FreightInfo, error)
}

// QuoteRequest é uma linha de pedido a cotar.
type QuoteRequest struct {
	CatalogItemID string
	ProductID     string
	SupplierID    string
	ProducerID    string
	CategoryID    string
	StateCode     string
	OnDate        time.Time
	Area          decimal.Decimal
	WeightMode    WeightMode
}

// Quote é o resultado combinado dos três resolvedores para uma linha.
type Quote struct {
	BasePrice     decimal.Decimal
	UnitPrice     decimal.Decimal
	FreightWeight decimal.Decimal
	Discount      DiscountResult
}

// QuoteService compõe os três resolvedores sobre os colaboradores que
// materializam seus insumos. A composição em si é trivial:
// unitPrice = preço resolvido × (100 − percentual) / 100, mais o peso de frete.
type QuoteService struct {
	catalog       CatalogLookup
	segmentations SegmentationRepository
	dimensions    DimensionLookup
	log           zerolog.Logger
}

func NewQuoteService(catalog CatalogLookup, segmentations SegmentationRepository, dimensions DimensionLookup, log zerolog.Logger) *QuoteService {
	return &QuoteService{
		catalog:       catalog,
		segmentations: segmentations,
		dimensions:    dimensions,
		log:           log,
	}
}

var oneHundred = decimal.NewFromInt(100)

// Quote cota uma linha de pedido. Erros aqui são de colaborador (lookup
// falhou) ou de contrato (área negativa, dimensões inválidas) — nunca de
// configuração esparsa, que os resolvedores degradam silenciosamente; os
// caminhos degradados são logados aqui, não dentro das funções puras.
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	entry, err := s.catalog.CatalogEntry(ctx, req.CatalogItemID)
	if err != nil {
		return nil, fmt.Errorf("consulta de catálogo [%s]: %w", req.CatalogItemID, err)
	}
	price := ResolvePrice(entry.Table, entry.BasePrice, req.StateCode, req.OnDate)

	segs, err := s.segmentations.ActiveSegmentations(ctx, req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("consulta de segmentações [%s]: %w", req.SupplierID, err)
	}
	discount, err := ResolveDiscount(segs, req.CategoryID, req.Area)
	if err != nil {
		return nil, err
	}
	if discount.Percent.IsZero() {
		s.log.Debug().
			Str("supplier", req.SupplierID).
			Str("producer", req.ProducerID).
			Str("category", req.CategoryID).
			Str("note", discount.Note).
			Msg("linha sem desconto aplicável")
	}

	info, err := s.dimensions.FreightInfo(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("consulta de dimensões [%s]: %w", req.ProductID, err)
	}
	weight, err := ResolveFreightWeight(info.Dims, req.WeightMode, info.CategoryName, info.UnitKind)
	if err != nil {
		return nil, err
	}

	return &Quote{
		BasePrice:     price,
		UnitPrice:     price.Mul(oneHundred.Sub(discount.Percent)).Div(oneHundred),
		FreightWeight: weight,
		Discount:      discount,
	}, nil
}
