package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrInvalidArea indica área negativa vinda do chamador — bug de contrato,
// não dado de configuração esparso, por isso falha em vez de degradar.
var ErrInvalidArea = errors.New("área cultivada negativa")

// Segmentation é o contêiner de política de desconto de um fornecedor.
// No máximo uma segmentação ativa por fornecedor deveria ter IsDefault; quem
// garante isso é o fluxo de escrita — este motor apenas lê e tolera zero, uma
// ou várias defaults.
type Segmentation struct {
	ID        string
	Name      string
	Active    bool
	IsDefault bool
	Groups    []Group
}

// Group é uma faixa de área [AreaMin, AreaMax) dentro de uma segmentação.
// AreaMax nulo significa faixa aberta à direita.
type Group struct {
	ID        string
	Name      string
	AreaMin   decimal.Decimal
	AreaMax   *decimal.Decimal
	Active    bool
	Discounts []CategoryDiscount
}

func (g Group) matches(area decimal.Decimal) bool {
	if area.LessThan(g.AreaMin) {
		return false
	}
	return g.AreaMax == nil || area.LessThan(*g.AreaMax)
}

// CategoryDiscount é o percentual de desconto de uma categoria dentro de um
// grupo. Percent em [0,100].
type CategoryDiscount struct {
	CategoryID string
	Percent    decimal.Decimal
	Active     bool
}

// DiscountResult carrega o percentual resolvido e o rastro de quais níveis da
// hierarquia resolveram, para diagnóstico. Percent zero com Note preenchida
// significa "sem desconto" por ausência de configuração em algum nível.
type DiscountResult struct {
	Percent          decimal.Decimal
	SegmentationName string
	GroupName        string
	Note             string
}

// ResolveDiscount resolve o percentual de desconto de uma categoria para uma
// área cultivada, sobre a lista já materializada de segmentações do
// fornecedor. Busca em três níveis, cada um com falha independente:
//
//  1. segmentação: a primeira ativa marcada default, senão a primeira ativa;
//  2. grupo: entre os grupos ativos da segmentação, o que contém a área —
//     empate (faixas sobrepostas) resolve pela menor AreaMin e depois pelo
//     menor ID, para que o resultado seja reproduzível;
//  3. desconto: o CategoryDiscount ativo da categoria dentro do grupo.
//
// Falha em qualquer nível devolve resultado zero com a Note apontando o nível,
// preservando os nomes dos níveis que resolveram. Nunca devolve erro por
// configuração esparsa ou inconsistente; apenas área negativa é erro.
func ResolveDiscount(segmentations []Segmentation, categoryID string, area decimal.Decimal) (DiscountResult, error) {
	if area.IsNegative() {
		return DiscountResult{}, fmt.Errorf("%w: %s", ErrInvalidArea, area)
	}

	seg := pickSegmentation(segmentations)
	if seg == nil {
		return DiscountResult{Note: "no segmentation for supplier"}, nil
	}

	groups := GroupsApplicableForArea(*seg, area)
	if len(groups) == 0 {
		return DiscountResult{
			SegmentationName: seg.Name,
			Note:             fmt.Sprintf("no group for area %s", area),
		}, nil
	}
	group := groups[0]

	discount, ok := pickDiscount(group, categoryID)
	if !ok {
		return DiscountResult{
			SegmentationName: seg.Name,
			GroupName:        group.Name,
			Note:             "no discount configured for category",
		}, nil
	}

	return DiscountResult{
		Percent:          discount.Percent,
		SegmentationName: seg.Name,
		GroupName:        group.Name,
		Note:             fmt.Sprintf("applied %s%% for area %s", discount.Percent, area),
	}, nil
}

func pickSegmentation(segmentations []Segmentation) *Segmentation {
	var first *Segmentation
	for i := range segmentations {
		if !segmentations[i].Active {
			continue
		}
		if segmentations[i].IsDefault {
			return &segmentations[i]
		}
		if first == nil {
			first = &segmentations[i]
		}
	}
	return first
}

func pickDiscount(group Group, categoryID string) (CategoryDiscount, bool) {
	for _, d := range group.Discounts {
		if d.CategoryID == categoryID && d.Active {
			return d, true
		}
	}
	return CategoryDiscount{}, false
}

// GroupsApplicableForArea devolve todos os grupos ativos da segmentação cuja
// faixa contém a área, ordenados por AreaMin crescente e depois por ID. Mais
// de um resultado denuncia faixas sobrepostas — o trabalho de validação de
// configuração usa isto para detectar a inconsistência; a resolução de
// desconto usa o primeiro.
func GroupsApplicableForArea(seg Segmentation, area decimal.Decimal) []Group {
	var matched []Group
	for _, g := range seg.Groups {
		if g.Active && g.matches(area) {
			matched = append(matched, g)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if c := matched[i].AreaMin.Cmp(matched[j].AreaMin); c != 0 {
			return c < 0
		}
		return matched[i].ID < matched[j].ID
	})
	return matched
}

// AreaFitsAnyActiveGroup diz se alguma faixa ativa da segmentação contém a área.
func AreaFitsAnyActiveGroup(seg Segmentation, area decimal.Decimal) bool {
	for _, g := range seg.Groups {
		if g.Active && g.matches(area) {
			return true
		}
	}
	return false
}
