// Package yaml carrega um dataset de cotação (fornecedores, catálogo,
// produtos) de um arquivo YAML e o expõe através das portas do motor de
// preços. Serve a CLI de diagnóstico e os testes de aceitação; em produção as
// mesmas portas são implementadas sobre o banco.
package yaml

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"service-pricing/pkg/pricing"
)

type datasetFile struct {
	Suppliers []supplierRow `yaml:"suppliers"`
	Catalog   []catalogRow  `yaml:"catalog"`
	Products  []productRow  `yaml:"products"`
}

type supplierRow struct {
	ID            string            `yaml:"id"`
	Name          string            `yaml:"name"`
	Segmentations []segmentationRow `yaml:"segmentations"`
}

type segmentationRow struct {
	ID      string     `yaml:"id"`
	Name    string     `yaml:"name"`
	Active  bool       `yaml:"active"`
	Default bool       `yaml:"default"`
	Groups  []groupRow `yaml:"groups"`
}

type groupRow struct {
	ID        string        `yaml:"id"`
	Name      string        `yaml:"name"`
	AreaMin   string        `yaml:"area_min"`
	AreaMax   string        `yaml:"area_max"`
	Active    bool          `yaml:"active"`
	Discounts []discountRow `yaml:"discounts"`
}

type discountRow struct {
	CategoryID string `yaml:"category_id"`
	Percent    string `yaml:"percent"`
	Active     bool   `yaml:"active"`
}

type catalogRow struct {
	ID         string `yaml:"id"`
	BasePrice  string `yaml:"base_price"`
	PriceTable string `yaml:"price_table"`
}

type productRow struct {
	ID           string        `yaml:"id"`
	CategoryName string        `yaml:"category_name"`
	UnitKind     string        `yaml:"unit_kind"`
	Dimensions   dimensionsRow `yaml:"dimensions"`
}

type dimensionsRow struct {
	Height             string `yaml:"height"`
	Width              string `yaml:"width"`
	Length             string `yaml:"length"`
	NominalWeight      string `yaml:"nominal_weight"`
	PackageWeight      string `yaml:"package_weight"`
	MinimumQuantity    string `yaml:"minimum_quantity"`
	PackageKind        string `yaml:"package_kind"`
	ThousandUnitWeight string `yaml:"thousand_unit_weight"`
	DensityRangeStart  string `yaml:"density_range_start"`
	DensityRangeEnd    string `yaml:"density_range_end"`
}

// Dataset implementa pricing.CatalogLookup, pricing.SegmentationRepository e
// pricing.DimensionLookup sobre um arquivo carregado em memória.
type Dataset struct {
	suppliers map[string][]pricing.Segmentation
	catalog   map[string]pricing.CatalogEntry
	products  map[string]pricing.FreightInfo
}

// LoadDataset lê e valida o arquivo. Erros estruturais (arquivo ausente, YAML
// inválido, decimal impossível de parsear) são erro de verdade — a tolerância
// a dados malformados vale só para o conteúdo da tabela de preços, que passa
// pelo mesmo parse leniente de qualquer outra fonte.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset não encontrado [%s]: %w", path, err)
	}

	var file datasetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("erro ao parsear YAML do dataset: %w", err)
	}

	ds := &Dataset{
		suppliers: make(map[string][]pricing.Segmentation, len(file.Suppliers)),
		catalog:   make(map[string]pricing.CatalogEntry, len(file.Catalog)),
		products:  make(map[string]pricing.FreightInfo, len(file.Products)),
	}

	for _, sup := range file.Suppliers {
		segs, err := buildSegmentations(sup)
		if err != nil {
			return nil, err
		}
		ds.suppliers[sup.ID] = segs
	}

	for _, item := range file.Catalog {
		base, err := parseDecimalField(item.BasePrice, fmt.Sprintf("catálogo %s: base_price", item.ID))
		if err != nil {
			return nil, err
		}
		ds.catalog[item.ID] = pricing.CatalogEntry{
			Table:     pricing.ParsePriceTable([]byte(item.PriceTable)),
			BasePrice: base,
		}
	}

	for _, prod := range file.Products {
		dims, err := buildDimensions(prod)
		if err != nil {
			return nil, err
		}
		if err := dims.Validate(); err != nil {
			return nil, fmt.Errorf("produto %s: %w", prod.ID, err)
		}
		ds.products[prod.ID] = pricing.FreightInfo{
			Dims:         dims,
			CategoryName: prod.CategoryName,
			UnitKind:     prod.UnitKind,
		}
	}

	return ds, nil
}

func buildSegmentations(sup supplierRow) ([]pricing.Segmentation, error) {
	segs := make([]pricing.Segmentation, 0, len(sup.Segmentations))
	for _, row := range sup.Segmentations {
		seg := pricing.Segmentation{
			ID:        orUUID(row.ID),
			Name:      row.Name,
			Active:    row.Active,
			IsDefault: row.Default,
		}
		for _, g := range row.Groups {
			where := fmt.Sprintf("fornecedor %s, grupo %q", sup.ID, g.Name)
			areaMin, err := parseDecimalField(g.AreaMin, where+": area_min")
			if err != nil {
				return nil, err
			}
			areaMax, err := parseOptionalDecimal(g.AreaMax, where+": area_max")
			if err != nil {
				return nil, err
			}
			group := pricing.Group{
				ID:      orUUID(g.ID),
				Name:    g.Name,
				AreaMin: areaMin,
				AreaMax: areaMax,
				Active:  g.Active,
			}
			for _, d := range g.Discounts {
				percent, err := parseDecimalField(d.Percent, where+": percent de "+d.CategoryID)
				if err != nil {
					return nil, err
				}
				group.Discounts = append(group.Discounts, pricing.CategoryDiscount{
					CategoryID: d.CategoryID,
					Percent:    percent,
					Active:     d.Active,
				})
			}
			seg.Groups = append(seg.Groups, group)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func buildDimensions(prod productRow) (pricing.ProductDimensions, error) {
	row := prod.Dimensions
	where := "produto " + prod.ID

	var (
		dims pricing.ProductDimensions
		err  error
	)
	fields := []struct {
		raw  string
		name string
		dst  *decimal.Decimal
	}{
		{row.Height, "height", &dims.Height},
		{row.Width, "width", &dims.Width},
		{row.Length, "length", &dims.Length},
		{row.NominalWeight, "nominal_weight", &dims.NominalWeight},
		{row.PackageWeight, "package_weight", &dims.PackageWeight},
		{row.MinimumQuantity, "minimum_quantity", &dims.MinimumQuantity},
	}
	for _, f := range fields {
		if *f.dst, err = parseDecimalField(f.raw, where+": "+f.name); err != nil {
			return pricing.ProductDimensions{}, err
		}
	}
	dims.PackageKind = row.PackageKind

	if dims.ThousandUnitWeight, err = parseOptionalDecimal(row.ThousandUnitWeight, where+": thousand_unit_weight"); err != nil {
		return pricing.ProductDimensions{}, err
	}
	if dims.DensityRangeStart, err = parseOptionalDecimal(row.DensityRangeStart, where+": density_range_start"); err != nil {
		return pricing.ProductDimensions{}, err
	}
	if dims.DensityRangeEnd, err = parseOptionalDecimal(row.DensityRangeEnd, where+": density_range_end"); err != nil {
		return pricing.ProductDimensions{}, err
	}
	return dims, nil
}

func parseDecimalField(raw, where string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: valor decimal inválido %q: %w", where, raw, err)
	}
	return v, nil
}

func parseOptionalDecimal(raw, where string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := parseDecimalField(raw, where)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Linhas sem ID ganham um; o ID participa do desempate de faixas sobrepostas,
// então precisa sempre existir.
func orUUID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func (d *Dataset) CatalogEntry(_ context.Context, catalogItemID string) (pricing.CatalogEntry, error) {
	entry, ok := d.catalog[catalogItemID]
	if !ok {
		return pricing.CatalogEntry{}, fmt.Errorf("item de catálogo %q não existe no dataset", catalogItemID)
	}
	return entry, nil
}

func (d *Dataset) ActiveSegmentations(_ context.Context, supplierID string) ([]pricing.Segmentation, error) {
	var active []pricing.Segmentation
	for _, seg := range d.suppliers[supplierID] {
		if seg.Active {
			active = append(active, seg)
		}
	}
	return active, nil
}

func (d *Dataset) FreightInfo(_ context.Context, productID string) (pricing.FreightInfo, error) {
	info, ok := d.products[productID]
	if !ok {
		return pricing.FreightInfo{}, fmt.Errorf("produto %q não existe no dataset", productID)
	}
	return info, nil
}

// Segmentations devolve todas as segmentações (ativas ou não) de um
// fornecedor, para auditoria de configuração.
func (d *Dataset) Segmentations(supplierID string) []pricing.Segmentation {
	return d.suppliers[supplierID]
}

// SupplierIDs lista os fornecedores presentes no dataset.
func (d *Dataset) SupplierIDs() []string {
	ids := make([]string, 0, len(d.suppliers))
	for id := range d.suppliers {
		ids = append(ids, id)
	}
	return ids
}
