package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightMode seleciona o cálculo de peso de frete.
type WeightMode string

const (
	WeightNominal WeightMode = "nominal"
	WeightCubic   WeightMode = "cubic"
)

// CategoriaSementes é a categoria (e o tipo de unidade) que habilita o cálculo
// de peso por PMS no modo nominal.
const CategoriaSementes = "Sementes"

// ErrInvalidDimensions indica dimensões obrigatórias não-positivas — o objeto
// deveria ter sido validado na construção, a montante.
var ErrInvalidDimensions = errors.New("dimensões de produto inválidas")

// ProductDimensions é o registro físico imutável de um produto. Medidas em cm,
// pesos em kg; ThousandUnitWeight (PMS) em gramas por mil unidades, só
// relevante para sementes; DensityRangeStart/End em kg/m³, usados no peso
// cúbico. Campos obrigatórios são estritamente positivos (ver Validate).
type ProductDimensions struct {
	Height          decimal.Decimal
	Width           decimal.Decimal
	Length          decimal.Decimal
	NominalWeight   decimal.Decimal
	PackageWeight   decimal.Decimal
	MinimumQuantity decimal.Decimal
	PackageKind     string

	ThousandUnitWeight *decimal.Decimal
	DensityRangeStart  *decimal.Decimal
	DensityRangeEnd    *decimal.Decimal
}

// Validate confere os invariantes de construção: todos os campos numéricos
// obrigatórios estritamente positivos.
func (d ProductDimensions) Validate() error {
	required := []struct {
		name  string
		value decimal.Decimal
	}{
		{"height", d.Height},
		{"width", d.Width},
		{"length", d.Length},
		{"nominalWeight", d.NominalWeight},
		{"packageWeight", d.PackageWeight},
		{"minimumQuantity", d.MinimumQuantity},
	}
	for _, f := range required {
		if !f.value.IsPositive() {
			return fmt.Errorf("%w: %s = %s", ErrInvalidDimensions, f.name, f.value)
		}
	}
	return nil
}

var (
	cmCubedPerM3  = decimal.NewFromInt(1_000_000)
	gramsPerKgPMS = decimal.NewFromInt(1_000_000)
)

// ResolveFreightWeight resolve o peso de embarque (kg) de uma linha de produto.
//
// Modo cúbico: volume (m³) × DensityRangeStart, nunca abaixo do peso físico da
// embalagem; sem densidade configurada, vale o peso da embalagem.
//
// Modo nominal: para sementes vendidas por contagem com PMS configurado, o
// peso é PMS/1e6 × quantidade mínima (gramas por mil → kg por unidade ×
// unidades); qualquer outra combinação vale o peso da embalagem.
//
// Aritmética decimal exata, sem arredondamento — o frete é faturado sobre este
// número e quem precisar exibir arredonda depois.
func ResolveFreightWeight(dims ProductDimensions, mode WeightMode, categoryName, unitKind string) (decimal.Decimal, error) {
	if err := dims.Validate(); err != nil {
		return decimal.Decimal{}, err
	}

	switch mode {
	case WeightCubic:
		if dims.DensityRangeStart == nil {
			return dims.PackageWeight, nil
		}
		volumeM3 := dims.Height.Mul(dims.Width).Mul(dims.Length).Div(cmCubedPerM3)
		candidate := volumeM3.Mul(*dims.DensityRangeStart)
		return decimal.Max(candidate, dims.PackageWeight), nil

	case WeightNominal:
		if categoryName == CategoriaSementes && unitKind == CategoriaSementes && dims.ThousandUnitWeight != nil {
			return dims.ThousandUnitWeight.Div(gramsPerKgPMS).Mul(dims.MinimumQuantity), nil
		}
		return dims.PackageWeight, nil

	default:
		return dims.PackageWeight, nil
	}
}
