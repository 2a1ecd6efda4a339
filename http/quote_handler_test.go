package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rcmulti/domain"
	"rcmulti/service"
)

type stubCarrier struct {
	id     domain.CarrierID
	label  string
	result domain.QuoteResult
}

func (s *stubCarrier) ID() domain.CarrierID { return s.id }
func (s *stubCarrier) Label() string        { return s.label }

func (s *stubCarrier) Quote(context.Context, domain.QuoteInput) domain.QuoteResult {
	return s.result
}

func newTestHandler() *QuoteHandler {
	classifier := service.NewClassifier([]domain.SpecialtyInfo{
		{ID: "dermatologia", Name: "Dermatologia", Class: domain.ClassSemCirurgia},
		{ID: "obstetricia", Name: "Obstetrícia", Class: domain.ClassObstetra},
	})
	akad := &stubCarrier{
		id:    domain.CarrierAkad,
		label: "Akad",
		result: domain.QuoteResult{
			Carrier:      domain.CarrierAkad,
			CarrierLabel: "Akad",
			Currency:     "BRL",
			TotalPremium: 2890.55,
		},
	}
	fairfax := &stubCarrier{
		id:    domain.CarrierFairfax,
		label: "Fairfax",
		result: domain.QuoteResult{
			Carrier:      domain.CarrierFairfax,
			CarrierLabel: "Fairfax",
			Currency:     "BRL",
			Error:        "Fairfax: HTTP 502",
		},
	}
	svc := service.NewQuoteService(classifier, []service.CarrierClient{akad, fairfax}, nil, zap.NewNop())
	return NewQuoteHandler(svc)
}

func quoteBody() string {
	return `{
		"specialtyId": "dermatologia",
		"crm": "18999",
		"coverage": 300000,
		"claimsHistory5y": "NENHUM",
		"notifications12m": "NENHUM",
		"policyStatus": "NOVO",
		"defenseCost": "STANDARD",
		"startDate": "2026-09-01T00:00:00Z",
		"targets": {"akad": true, "fairfax": true}
	}`
}

func TestQuoteAllHandlerReturnsResultPerCarrier(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/quote/rc", strings.NewReader(quoteBody()))
	rec := httptest.NewRecorder()
	handler.QuoteAll(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var results []domain.QuoteResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	require.Len(t, results, 2)

	byCarrier := make(map[domain.CarrierID]domain.QuoteResult, 2)
	for _, r := range results {
		byCarrier[r.Carrier] = r
	}
	assert.Equal(t, 2890.55, byCarrier[domain.CarrierAkad].TotalPremium)
	// A seguradora que falhou entra na resposta com o erro, nunca some.
	assert.Equal(t, "Fairfax: HTTP 502", byCarrier[domain.CarrierFairfax].Error)
}

func TestQuoteAllHandlerRejectsMalformedBody(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/quote/rc", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.QuoteAll(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteAllHandlerRejectsInvalidInput(t *testing.T) {
	handler := newTestHandler()

	body := `{"specialtyId": "dermatologia", "crm": "18999", "coverage": 0, "targets": {"akad": true}}`
	req := httptest.NewRequest(http.MethodPost, "/quote/rc", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.QuoteAll(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cobertura")
}

func TestQuoteAllHandlerMethodNotAllowed(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/quote/rc", nil)
	rec := httptest.NewRecorder()
	handler.QuoteAll(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSpecialtiesHandler(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/quote/rc/specialties", nil)
	rec := httptest.NewRecorder()
	handler.Specialties(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var list []domain.SpecialtyInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 2)
}
