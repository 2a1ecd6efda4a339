package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rcmulti/domain"
)

func testUnimedTable() *UnimedTable {
	table := &UnimedTable{
		Legends: map[string]string{
			"Dermatologia": "A",
			"Obstetrícia":  "C",
			"Pediatria":    "",
		},
	}
	rowA := UnimedPriceRow{Group: "A", Coverage: 300_000}
	rowA.Prices.SemChefeSemDiretor = UnimedPrices{TotalAVista: 2430.00, Parcelas6x: 421.77, Parcelas10x: 262.77}
	rowA.Prices.ComChefeSemDiretor = UnimedPrices{TotalAVista: 2794.50, Parcelas6x: 485.03, Parcelas10x: 302.19}
	rowA.Prices.SemChefeComDiretor = UnimedPrices{TotalAVista: 2916.00, Parcelas6x: 506.12, Parcelas10x: 315.32}
	rowA.Prices.ComChefeComDiretor = UnimedPrices{TotalAVista: 3280.50, Parcelas6x: 569.38, Parcelas10x: 354.74}
	table.PriceRows = []UnimedPriceRow{rowA}
	return table
}

func newUnimedTestClient() *UnimedClient {
	return NewUnimedClient(testUnimedTable(), NewClassifier(testSpecialties()), zap.NewNop())
}

func TestUnimedQuoteFromTable(t *testing.T) {
	client := newUnimedTestClient()

	in := validAkadInput()
	result := client.Quote(context.Background(), in)

	require.Empty(t, result.Error)
	assert.Equal(t, domain.CarrierUnimed, result.Carrier)
	assert.Equal(t, 2430.00, result.TotalPremium)
	require.NotNil(t, result.Installments6x)
	assert.Equal(t, 421.77, *result.Installments6x)
}

func TestUnimedQuotePicksHeadAndDirectorCell(t *testing.T) {
	client := newUnimedTestClient()

	in := validAkadInput()
	in.Extras.Unimed = &domain.UnimedExtras{HeadOfService: true, TechnicalDirector: true}
	result := client.Quote(context.Background(), in)

	require.Empty(t, result.Error)
	assert.Equal(t, 3280.50, result.TotalPremium)

	in.Extras.Unimed = &domain.UnimedExtras{HeadOfService: true}
	assert.Equal(t, 2794.50, client.Quote(context.Background(), in).TotalPremium)
}

func TestUnimedUnknownSpecialty(t *testing.T) {
	client := newUnimedTestClient()

	in := validAkadInput()
	in.SpecialtyID = "numerologia"
	result := client.Quote(context.Background(), in)

	assert.NotEmpty(t, result.Error)
	assert.Zero(t, result.TotalPremium)
}

func TestUnimedSpecialtyWithoutGroup(t *testing.T) {
	client := newUnimedTestClient()

	// Pediatria existe no enquadramento mas a legenda está vazia na tabela.
	in := validAkadInput()
	in.SpecialtyID = "pediatria"
	result := client.Quote(context.Background(), in)

	assert.Contains(t, result.Error, "fora da tabela")
}

func TestUnimedMissingCoverageRow(t *testing.T) {
	client := newUnimedTestClient()

	in := validAkadInput()
	in.Coverage = 750_000
	result := client.Quote(context.Background(), in)

	assert.Contains(t, result.Error, "sem preço")
	assert.Zero(t, result.TotalPremium)
}
