package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	yamlds "service-pricing/internal/infrastructure/yaml"
	"service-pricing/internal/usecase/validateconfig"
	"service-pricing/pkg/pricing"
)

func main() {
	datasetPath := flag.String("dataset", "data/dataset.yaml", "caminho do dataset YAML")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("   PRICING ENGINE CLI - DIAGNOSTIC TOOL")
	fmt.Println(strings.Repeat("=", 60))

	dataset, err := yamlds.LoadDataset(*datasetPath)
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao carregar dataset")
	}

	service := pricing.NewQuoteService(dataset, dataset, dataset, log)

	// Cenários de exemplo: mesma linha de milho cotada para SP (tabela do
	// estado), RJ (cai no padrão) e um item sem tabela (cai no preço base).
	onDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	scenarios := []struct {
		label string
		req   pricing.QuoteRequest
	}{
		{"Milho / SP / grande produtor", pricing.QuoteRequest{
			CatalogItemID: "ITEM-MILHO",
			ProductID:     "PROD-MILHO",
			SupplierID:    "SUP-001",
			ProducerID:    "PRD-42",
			CategoryID:    "CAT-MILHO",
			StateCode:     "SP",
			OnDate:        onDate,
			Area:          decimal.NewFromInt(120),
			WeightMode:    pricing.WeightNominal,
		}},
		{"Milho / RJ / pequeno produtor", pricing.QuoteRequest{
			CatalogItemID: "ITEM-MILHO",
			ProductID:     "PROD-MILHO",
			SupplierID:    "SUP-001",
			ProducerID:    "PRD-43",
			CategoryID:    "CAT-MILHO",
			StateCode:     "RJ",
			OnDate:        onDate,
			Area:          decimal.NewFromInt(30),
			WeightMode:    pricing.WeightNominal,
		}},
		{"Adubo / sem tabela / peso cúbico", pricing.QuoteRequest{
			CatalogItemID: "ITEM-ADUBO",
			ProductID:     "PROD-ADUBO",
			SupplierID:    "SUP-001",
			ProducerID:    "PRD-42",
			CategoryID:    "CAT-ADUBO",
			StateCode:     "SP",
			OnDate:        onDate,
			Area:          decimal.NewFromInt(120),
			WeightMode:    pricing.WeightCubic,
		}},
	}

	fmt.Println("\n[1. COTAÇÕES]")
	for _, sc := range scenarios {
		quote, err := service.Quote(context.Background(), sc.req)
		if err != nil {
			log.Error().Err(err).Str("cenario", sc.label).Msg("cotação falhou")
			continue
		}
		displayQuote(sc.label, quote)
	}

	displayAuditReport(dataset)
}

func displayQuote(label string, q *pricing.Quote) {
	fmt.Printf("\n   %s\n", label)
	fmt.Printf("   Preço resolvido:  %s\n", q.BasePrice)
	fmt.Printf("   Preço unitário:   %s (desconto %s%%)\n", q.UnitPrice, q.Discount.Percent)
	fmt.Printf("   Peso de frete:    %s kg\n", q.FreightWeight)
	if q.Discount.SegmentationName != "" {
		fmt.Printf("   Segmentação:      %s / %s\n", q.Discount.SegmentationName, q.Discount.GroupName)
	}
	fmt.Printf("   Nota:             %s\n", q.Discount.Note)
}

func displayAuditReport(dataset *yamlds.Dataset) {
	fmt.Println("\n[2. AUDITORIA DE CONFIGURAÇÃO]")

	auditor := &validateconfig.UseCase{}
	total := 0
	for _, supplierID := range dataset.SupplierIDs() {
		for _, f := range auditor.Audit(dataset.Segmentations(supplierID)) {
			total++
			fmt.Printf("   ⚠️  [%s] fornecedor %s, segmentação %q: %s\n",
				f.Code, supplierID, f.SegmentationName, f.Detail)
		}
	}
	if total == 0 {
		fmt.Println("   ✅ Nenhuma inconsistência detectada.")
	}

	fmt.Println(strings.Repeat("=", 60))
}
