package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceTable é a tabela de preços de um item de catálogo, indexada por estado,
// com um balde "padrao" opcional. A tabela é somente-leitura para o motor: quem
// a edita é a gestão de catálogo.
type PriceTable struct {
	Estados map[string]PriceExpr
	Padrao  PriceExpr
}

// PriceExpr é o valor associado a um estado (ou ao padrão): uma constante ou uma
// sequência ordenada de faixas de datas. Implementações fora deste pacote não
// existem; o tipo é uma variante fechada.
type PriceExpr interface {
	valueAt(onDate time.Time) (decimal.Decimal, bool)
}

// ConstantPrice vale sempre, independente da data.
type ConstantPrice struct {
	Valor decimal.Decimal
}

func (c ConstantPrice) valueAt(time.Time) (decimal.Decimal, bool) {
	return c.Valor, true
}

// DateRange é uma faixa [DataInicio, DataFim]; DataFim nulo significa aberta.
type DateRange struct {
	DataInicio time.Time
	DataFim    *time.Time
	Valor      decimal.Decimal
}

func (r DateRange) contains(onDate time.Time) bool {
	if onDate.Before(r.DataInicio) {
		return false
	}
	if r.DataFim != nil && onDate.After(*r.DataFim) {
		return false
	}
	return true
}

// RangeListPrice escolhe a primeira faixa, na ordem da sequência, que contém a
// data consultada.
type RangeListPrice struct {
	Ranges []DateRange
}

func (r RangeListPrice) valueAt(onDate time.Time) (decimal.Decimal, bool) {
	for _, dr := range r.Ranges {
		if dr.contains(onDate) {
			return dr.Valor, true
		}
	}
	return decimal.Decimal{}, false
}

// ResolvePrice resolve o preço unitário de um item para um estado e uma data.
// Ordem de prioridade: estados[stateCode] → padrao → basePrice. A função é
// total: sempre devolve um preço, nunca erro — dados de preço são opcionais e
// a ausência (ou má-formação, tratada no parse) degrada para o próximo nível.
func ResolvePrice(table *PriceTable, basePrice decimal.Decimal, stateCode string, onDate time.Time) decimal.Decimal {
	if table == nil {
		return basePrice
	}
	if expr, ok := table.Estados[stateCode]; ok && expr != nil {
		if v, ok := expr.valueAt(onDate); ok {
			return v
		}
	}
	if table.Padrao != nil {
		if v, ok := table.Padrao.valueAt(onDate); ok {
			return v
		}
	}
	return basePrice
}

// ParsePriceTable converte o JSON semi-estruturado da tabela de preços na
// variante tipada. O parse é tolerante por contrato: expressão malformada
// (data inválida, formato inesperado) é descartada e aquele nível passa a
// render nulo na resolução — nunca um erro de checkout. Tabela inteira
// inutilizável vira nil, equivalente a "sem tabela".
func ParsePriceTable(raw []byte) *PriceTable {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var doc struct {
		Estados map[string]json.RawMessage `json:"estados"`
		Padrao  json.RawMessage            `json:"padrao"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	table := &PriceTable{}
	if len(doc.Estados) > 0 {
		table.Estados = make(map[string]PriceExpr, len(doc.Estados))
		for uf, rawExpr := range doc.Estados {
			if expr := parsePriceExpr(rawExpr); expr != nil {
				table.Estados[uf] = expr
			}
		}
	}
	table.Padrao = parsePriceExpr(doc.Padrao)

	if len(table.Estados) == 0 && table.Padrao == nil {
		return nil
	}
	return table
}

func parsePriceExpr(raw json.RawMessage) PriceExpr {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] == '[' {
		return parseRangeList(raw)
	}
	v, ok := parseDecimal(raw)
	if !ok {
		return nil
	}
	return ConstantPrice{Valor: v}
}

func parseRangeList(raw json.RawMessage) PriceExpr {
	var entries []struct {
		DataInicio string          `json:"dataInicio"`
		DataFim    *string         `json:"dataFim"`
		Valor      json.RawMessage `json:"valor"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	ranges := make([]DateRange, 0, len(entries))
	for _, e := range entries {
		// Uma entrada malformada invalida a expressão inteira (rende nulo).
		inicio, err := parseDate(e.DataInicio)
		if err != nil {
			return nil
		}
		valor, ok := parseDecimal(e.Valor)
		if !ok {
			return nil
		}
		var fim *time.Time
		if e.DataFim != nil && *e.DataFim != "" {
			f, err := parseDate(*e.DataFim)
			if err != nil {
				return nil
			}
			fim = &f
		}
		ranges = append(ranges, DateRange{DataInicio: inicio, DataFim: fim, Valor: valor})
	}
	if len(ranges) == 0 {
		return nil
	}
	return RangeListPrice{Ranges: ranges}
}

func parseDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return decimal.Decimal{}, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, false
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return v, true
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("data inválida %q", s)
}
