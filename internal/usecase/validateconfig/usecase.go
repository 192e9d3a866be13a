// Package validateconfig audita a configuração de segmentações de um
// fornecedor. Inconsistências (faixas sobrepostas, múltiplas defaults) não são
// erro para a resolução de desconto — lá o desempate é determinístico —, mas
// um trabalho de monitoramento precisa enxergá-las para corrigir na origem.
package validateconfig

import (
	"fmt"

	"github.com/shopspring/decimal"

	"service-pricing/pkg/pricing"
)

type FindingCode string

const (
	BracketOverlap    FindingCode = "bracket-overlap"
	MultipleDefaults  FindingCode = "multiple-defaults"
	InvertedBracket   FindingCode = "inverted-bracket"
	PercentOutOfRange FindingCode = "percent-out-of-range"
)

// Finding é uma violação detectada. Findings são reportados, nunca fatais —
// mesma postura dos guards: bloquear é decisão de quem consome o relatório.
type Finding struct {
	Code             FindingCode
	SegmentationID   string
	SegmentationName string
	Detail           string
}

type UseCase struct{}

var oneHundred = decimal.NewFromInt(100)

// Audit varre as segmentações de um fornecedor e devolve as violações
// encontradas, na ordem da configuração. Lista vazia significa configuração
// limpa.
func (u *UseCase) Audit(segmentations []pricing.Segmentation) []Finding {
	var findings []Finding

	findings = append(findings, auditDefaults(segmentations)...)
	for _, seg := range segmentations {
		if !seg.Active {
			continue
		}
		findings = append(findings, auditBrackets(seg)...)
		findings = append(findings, auditPercents(seg)...)
	}
	return findings
}

func auditDefaults(segmentations []pricing.Segmentation) []Finding {
	var defaults []pricing.Segmentation
	for _, seg := range segmentations {
		if seg.Active && seg.IsDefault {
			defaults = append(defaults, seg)
		}
	}
	if len(defaults) <= 1 {
		return nil
	}

	var findings []Finding
	for _, seg := range defaults[1:] {
		findings = append(findings, Finding{
			Code:             MultipleDefaults,
			SegmentationID:   seg.ID,
			SegmentationName: seg.Name,
			Detail:           fmt.Sprintf("segmentação %q também marcada default; %q prevalece", seg.Name, defaults[0].Name),
		})
	}
	return findings
}

// auditBrackets sonda cada AreaMin ativa com GroupsApplicableForArea: duas
// faixas se sobrepõem exatamente quando a maior das AreaMin cai dentro das
// duas, então sondar os pontos de início encontra toda sobreposição.
func auditBrackets(seg pricing.Segmentation) []Finding {
	var findings []Finding
	seen := map[string]bool{}

	for _, g := range seg.Groups {
		if !g.Active {
			continue
		}
		if g.AreaMax != nil && !g.AreaMax.GreaterThan(g.AreaMin) {
			findings = append(findings, Finding{
				Code:             InvertedBracket,
				SegmentationID:   seg.ID,
				SegmentationName: seg.Name,
				Detail:           fmt.Sprintf("grupo %q tem faixa vazia [%s, %s)", g.Name, g.AreaMin, g.AreaMax),
			})
			continue
		}

		matches := pricing.GroupsApplicableForArea(seg, g.AreaMin)
		if len(matches) < 2 {
			continue
		}
		for i := 0; i < len(matches); i++ {
			for j := i + 1; j < len(matches); j++ {
				key := matches[i].ID + "|" + matches[j].ID
				if seen[key] {
					continue
				}
				seen[key] = true
				findings = append(findings, Finding{
					Code:             BracketOverlap,
					SegmentationID:   seg.ID,
					SegmentationName: seg.Name,
					Detail:           fmt.Sprintf("grupos %q e %q têm faixas de área sobrepostas", matches[i].Name, matches[j].Name),
				})
			}
		}
	}
	return findings
}

func auditPercents(seg pricing.Segmentation) []Finding {
	var findings []Finding
	for _, g := range seg.Groups {
		for _, d := range g.Discounts {
			if d.Percent.IsNegative() || d.Percent.GreaterThan(oneHundred) {
				findings = append(findings, Finding{
					Code:             PercentOutOfRange,
					SegmentationID:   seg.ID,
					SegmentationName: seg.Name,
					Detail:           fmt.Sprintf("grupo %q, categoria %s: percentual %s fora de [0,100]", g.Name, d.CategoryID, d.Percent),
				})
			}
		}
	}
	return findings
}
