package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcmulti/domain"
)

// validAkadInput: input que passa em todas as regras da Akad.
func validAkadInput() domain.QuoteInput {
	return domain.QuoteInput{
		SpecialtyID:      "dermatologia",
		InternalClass:    domain.ClassSemCirurgia,
		CRM:              "18999",
		Coverage:         300_000,
		ClaimsHistory5y:  domain.ClaimsNone,
		Notifications12m: domain.NotifNone,
		PolicyStatus:     domain.PolicyNew,
		DefenseCost:      domain.DefenseStandard,
		StartDate:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Targets:          domain.Targets{Akad: true},
	}
}

func TestAkadRulesAcceptCleanInput(t *testing.T) {
	assert.Nil(t, Evaluate(akadRules, validAkadInput()))
}

func TestAkadRejectsThreeOrMoreClaims(t *testing.T) {
	in := validAkadInput()
	in.ClaimsHistory5y = domain.ClaimsThreeOrMore
	total := 10_000.0
	in.TotalClaims5y = &total

	ve := Evaluate(akadRules, in)
	require.NotNil(t, ve)
	assert.Equal(t, domain.CarrierAkad, ve.Carrier)
	assert.Contains(t, ve.Reason, "3 ou mais sinistros")
}

func TestAkadRejectsNotificationsWithoutClaims(t *testing.T) {
	in := validAkadInput()
	in.Notifications12m = domain.NotifOne
	in.ClaimsHistory5y = domain.ClaimsNone

	ve := Evaluate(akadRules, in)
	require.NotNil(t, ve)
	assert.Contains(t, ve.Reason, "Reclamações em 12 meses")
}

func TestAkadRejectsPlusBelowMinCoverage(t *testing.T) {
	in := validAkadInput()
	in.DefenseCost = domain.DefensePlus
	in.Coverage = 50_000

	ve := Evaluate(akadRules, in)
	require.NotNil(t, ve)
	assert.Contains(t, ve.Reason, "Honorários Plus")
}

func TestAkadAcceptsPlusAtMinCoverage(t *testing.T) {
	in := validAkadInput()
	in.DefenseCost = domain.DefensePlus
	in.Coverage = AkadPlusMinCoverage

	assert.Nil(t, Evaluate(akadRules, in))
}

func TestAkadRequiresTotalClaimsWhenHistory(t *testing.T) {
	in := validAkadInput()
	in.ClaimsHistory5y = domain.ClaimsOne
	in.TotalClaims5y = nil

	ve := Evaluate(akadRules, in)
	require.NotNil(t, ve)
	assert.Contains(t, ve.Reason, "Q37")

	total := 25_000.0
	in.TotalClaims5y = &total
	assert.Nil(t, Evaluate(akadRules, in))
}
