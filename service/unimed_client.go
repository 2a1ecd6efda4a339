package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"rcmulti/domain"
)

// UnimedPrices: preços de uma célula da tabela.
type UnimedPrices struct {
	TotalAVista float64 `json:"totalAVista"`
	Parcelas6x  float64 `json:"parcelas6x"`
	Parcelas10x float64 `json:"parcelas10x"`
}

// UnimedPriceRow: uma linha da tabela (grupo x cobertura), com as quatro
// combinações de chefe de serviço e diretor técnico.
type UnimedPriceRow struct {
	Group    string  `json:"grupo"`
	Coverage float64 `json:"cobertura"`
	Prices   struct {
		SemChefeSemDiretor UnimedPrices `json:"semChefeSemDiretor"`
		ComChefeSemDiretor UnimedPrices `json:"comChefeSemDiretor"`
		SemChefeComDiretor UnimedPrices `json:"semChefeComDiretor"`
		ComChefeComDiretor UnimedPrices `json:"comChefeComDiretor"`
	} `json:"precos"`
}

// UnimedTable é a tabela local de preços, carregada uma vez na subida.
type UnimedTable struct {
	PriceRows []UnimedPriceRow  `json:"tabelaPrecos"`
	Legends   map[string]string `json:"legendasEspecialidades"` // nome da especialidade -> grupo
}

// LoadUnimedTable lê a tabela do arquivo JSON.
func LoadUnimedTable(path string) (*UnimedTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tabela unimed: %w", err)
	}
	var table UnimedTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("tabela unimed: %w", err)
	}
	return &table, nil
}

// groupFor acha o grupo da especialidade, tolerando acento e caixa.
func (t *UnimedTable) groupFor(specialtyName string) (string, bool) {
	target := foldKey(specialtyName)
	for name, group := range t.Legends {
		if group != "" && foldKey(name) == target {
			return group, true
		}
	}
	return "", false
}

// UnimedClient cota pela tabela local: lookup puro, sem nenhuma chamada de
// rede. Implementa a mesma interface dos clients de API.
type UnimedClient struct {
	table      *UnimedTable
	classifier *Classifier
	log        *zap.Logger
}

func NewUnimedClient(table *UnimedTable, classifier *Classifier, log *zap.Logger) *UnimedClient {
	return &UnimedClient{
		table:      table,
		classifier: classifier,
		log:        log.With(zap.String("carrier", string(domain.CarrierUnimed))),
	}
}

func (c *UnimedClient) ID() domain.CarrierID { return domain.CarrierUnimed }
func (c *UnimedClient) Label() string        { return "Unimed" }

func (c *UnimedClient) Quote(_ context.Context, in domain.QuoteInput) domain.QuoteResult {
	trace := newAttemptTrace(c.log)
	trace.to(stateBuilding)

	info, err := c.classifier.Info(in.SpecialtyID)
	if err != nil {
		trace.to(stateValidationFailed)
		return c.errorResult(fmt.Sprintf("Unimed: especialidade %q sem enquadramento na tabela", in.SpecialtyID))
	}

	group, ok := c.table.groupFor(info.Name)
	if !ok {
		trace.to(stateValidationFailed)
		return c.errorResult(fmt.Sprintf("Unimed: especialidade %q fora da tabela de preços", info.Name))
	}
	trace.to(stateBuilt)

	var row *UnimedPriceRow
	for i := range c.table.PriceRows {
		r := &c.table.PriceRows[i]
		if r.Group == group && r.Coverage == in.Coverage {
			row = r
			break
		}
	}
	if row == nil {
		trace.to(stateFailed)
		return c.errorResult(fmt.Sprintf("Unimed: sem preço para o grupo %s com cobertura de R$ %.0f", group, in.Coverage))
	}

	headOfService, technicalDirector := false, false
	if in.Extras.Unimed != nil {
		headOfService = in.Extras.Unimed.HeadOfService
		technicalDirector = in.Extras.Unimed.TechnicalDirector
	}

	var prices UnimedPrices
	switch {
	case headOfService && technicalDirector:
		prices = row.Prices.ComChefeComDiretor
	case headOfService:
		prices = row.Prices.ComChefeSemDiretor
	case technicalDirector:
		prices = row.Prices.SemChefeComDiretor
	default:
		prices = row.Prices.SemChefeSemDiretor
	}

	p6, p10 := prices.Parcelas6x, prices.Parcelas10x
	result := domain.QuoteResult{
		Carrier:      domain.CarrierUnimed,
		CarrierLabel: c.Label(),
		Currency:     DefaultCurrency,
		TotalPremium: prices.TotalAVista,
	}
	if p6 > 0 {
		result.Installments6x = &p6
	}
	if p10 > 0 {
		result.Installments10x = &p10
	}
	trace.to(stateNormalized)
	return result
}

func (c *UnimedClient) errorResult(msg string) domain.QuoteResult {
	return domain.QuoteResult{
		Carrier:      domain.CarrierUnimed,
		CarrierLabel: c.Label(),
		Currency:     DefaultCurrency,
		TotalPremium: 0,
		Error:        msg,
	}
}
