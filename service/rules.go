package service

import "rcmulti/domain"

// Rule é uma regra de negócio de seguradora: predicado puro sobre o input
// e mensagem amigável quando bater. As regras rodam em ordem e a primeira
// que bater encerra a validação — sempre antes de qualquer chamada de rede.
type Rule struct {
	Carrier domain.CarrierID
	Reason  string
	Matches func(in domain.QuoteInput) bool
}

// Evaluate roda as regras em ordem e devolve o primeiro erro de validação.
func Evaluate(rules []Rule, in domain.QuoteInput) *domain.ValidationError {
	for _, r := range rules {
		if r.Matches(in) {
			return &domain.ValidationError{Carrier: r.Carrier, Reason: r.Reason}
		}
	}
	return nil
}

// akadRules: regras da doc da Akad. Thresholds são os vigentes no contrato;
// conferir a cada revisão da seguradora.
var akadRules = []Rule{
	{
		Carrier: domain.CarrierAkad,
		Reason:  "Akad: 3 ou mais sinistros nos últimos 5 anos não é aceito.",
		Matches: func(in domain.QuoteInput) bool {
			return in.ClaimsHistory5y == domain.ClaimsThreeOrMore
		},
	},
	{
		Carrier: domain.CarrierAkad,
		Reason:  "Akad: Reclamações em 12 meses só quando houve sinistro nos últimos 5 anos.",
		Matches: func(in domain.QuoteInput) bool {
			return in.Notifications12m != domain.NotifNone && in.ClaimsHistory5y == domain.ClaimsNone
		},
	},
	{
		Carrier: domain.CarrierAkad,
		Reason:  "Akad: Honorários Plus somente a partir de R$ 75.000 de cobertura.",
		Matches: func(in domain.QuoteInput) bool {
			return in.DefenseCost == domain.DefensePlus && in.Coverage < AkadPlusMinCoverage
		},
	},
	{
		Carrier: domain.CarrierAkad,
		Reason:  "Akad: Informe o valor total de sinistros (Q37) quando houver sinistralidade.",
		Matches: func(in domain.QuoteInput) bool {
			return in.ClaimsHistory5y != domain.ClaimsNone && in.TotalClaims5y == nil
		},
	},
}
