package service

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rcmulti/domain"
	"rcmulti/repository"
)

type fakeCarrier struct {
	id     domain.CarrierID
	label  string
	delay  time.Duration
	fail   string
	calls  atomic.Int32
	lastIn atomic.Value
}

func (f *fakeCarrier) ID() domain.CarrierID { return f.id }
func (f *fakeCarrier) Label() string        { return f.label }

func (f *fakeCarrier) Quote(_ context.Context, in domain.QuoteInput) domain.QuoteResult {
	f.calls.Add(1)
	f.lastIn.Store(in)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail != "" {
		return domain.QuoteResult{Carrier: f.id, CarrierLabel: f.label, Currency: "BRL", Error: f.fail}
	}
	return domain.QuoteResult{Carrier: f.id, CarrierLabel: f.label, Currency: "BRL", TotalPremium: 1000}
}

func newTestQuoteService(repo repository.QuoteRepository, carriers ...CarrierClient) *QuoteService {
	return NewQuoteService(NewClassifier(testSpecialties()), carriers, repo, zap.NewNop())
}

func targetsInput(akad, fairfax, unimed bool) domain.QuoteInput {
	in := validAkadInput()
	in.Targets = domain.Targets{Akad: akad, Fairfax: fairfax, Unimed: unimed}
	return in
}

func TestQuoteAllRoundTrip(t *testing.T) {
	akad := &fakeCarrier{id: domain.CarrierAkad, label: "Akad"}
	fairfax := &fakeCarrier{id: domain.CarrierFairfax, label: "Fairfax"}
	svc := newTestQuoteService(nil, akad, fairfax)

	results, err := svc.QuoteAll(context.Background(), targetsInput(true, false, false))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.CarrierAkad, results[0].Carrier)
	assert.Equal(t, int32(1), akad.calls.Load())
	assert.Zero(t, fairfax.calls.Load())
}

func TestQuoteAllPartialFailureIsolation(t *testing.T) {
	akad := &fakeCarrier{id: domain.CarrierAkad, label: "Akad", fail: "Akad: HTTP 500"}
	fairfax := &fakeCarrier{id: domain.CarrierFairfax, label: "Fairfax"}
	svc := newTestQuoteService(nil, akad, fairfax)

	results, err := svc.QuoteAll(context.Background(), targetsInput(true, true, false))

	require.NoError(t, err)
	require.Len(t, results, 2)

	byCarrier := make(map[domain.CarrierID]domain.QuoteResult, 2)
	for _, r := range results {
		byCarrier[r.Carrier] = r
	}
	assert.True(t, byCarrier[domain.CarrierAkad].Failed())
	assert.False(t, byCarrier[domain.CarrierFairfax].Failed())
	assert.Equal(t, 1000.0, byCarrier[domain.CarrierFairfax].TotalPremium)
}

func TestQuoteAllSlowCarrierDoesNotBlockResults(t *testing.T) {
	slow := &fakeCarrier{id: domain.CarrierAkad, label: "Akad", delay: 50 * time.Millisecond}
	fast := &fakeCarrier{id: domain.CarrierFairfax, label: "Fairfax"}
	svc := newTestQuoteService(nil, slow, fast)

	results, err := svc.QuoteAll(context.Background(), targetsInput(true, true, false))

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, int32(1), slow.calls.Load())
	assert.Equal(t, int32(1), fast.calls.Load())
}

func TestQuoteAllResolvesClassBeforeFanOut(t *testing.T) {
	akad := &fakeCarrier{id: domain.CarrierAkad, label: "Akad"}
	svc := newTestQuoteService(nil, akad)

	in := targetsInput(true, false, false)
	in.InternalClass = ""
	in.SpecialtyID = "dermatologia"

	_, err := svc.QuoteAll(context.Background(), in)
	require.NoError(t, err)

	seen, ok := akad.lastIn.Load().(domain.QuoteInput)
	require.True(t, ok)
	assert.Equal(t, domain.ClassSemCirurgia, seen.InternalClass)
}

func TestQuoteAllClassificationMissIsErrorPerCarrier(t *testing.T) {
	akad := &fakeCarrier{id: domain.CarrierAkad, label: "Akad"}
	fairfax := &fakeCarrier{id: domain.CarrierFairfax, label: "Fairfax"}
	svc := newTestQuoteService(nil, akad, fairfax)

	in := targetsInput(true, true, false)
	in.InternalClass = ""
	in.SpecialtyID = "numerologia"

	results, err := svc.QuoteAll(context.Background(), in)

	// Enquadramento é problema de dados, não rejeição da chamada.
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, r.Error, "sem enquadramento")
	}
	assert.Zero(t, akad.calls.Load())
	assert.Zero(t, fairfax.calls.Load())
}

func TestQuoteAllRejectsMalformedInput(t *testing.T) {
	svc := newTestQuoteService(nil, &fakeCarrier{id: domain.CarrierAkad, label: "Akad"})
	ctx := context.Background()

	in := targetsInput(true, false, false)
	in.Coverage = 0
	_, err := svc.QuoteAll(ctx, in)
	assert.Error(t, err)

	in = targetsInput(false, false, false)
	_, err = svc.QuoteAll(ctx, in)
	assert.Error(t, err)

	in = targetsInput(true, false, false)
	in.CRM = ""
	_, err = svc.QuoteAll(ctx, in)
	assert.Error(t, err)

	in = targetsInput(true, false, false)
	in.SpecialtyID = ""
	in.InternalClass = ""
	_, err = svc.QuoteAll(ctx, in)
	assert.Error(t, err)

	in = targetsInput(true, false, false)
	in.RetroactivityYears = 12
	_, err = svc.QuoteAll(ctx, in)
	assert.Error(t, err)
}

func TestQuoteAllSavesHistory(t *testing.T) {
	repo := repository.NewQuoteRepositoryMemory()
	svc := newTestQuoteService(repo, &fakeCarrier{id: domain.CarrierAkad, label: "Akad"})

	_, err := svc.QuoteAll(context.Background(), targetsInput(true, false, false))

	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
}

type failingRepo struct{}

func (failingRepo) Save(string, domain.QuoteInput, []domain.QuoteResult) error {
	return errors.New("save error")
}

func TestQuoteAllSaveFailureIsNotFatal(t *testing.T) {
	svc := newTestQuoteService(failingRepo{}, &fakeCarrier{id: domain.CarrierAkad, label: "Akad"})

	results, err := svc.QuoteAll(context.Background(), targetsInput(true, false, false))

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

// Cenário ponta a ponta: dermatologia, 300 mil de cobertura, sem sinistros,
// Akad e Fairfax de verdade (servidores de teste) mais a tabela Unimed.
func TestQuoteAllEndToEnd(t *testing.T) {
	akadFx := newAkadFixture(t, http.StatusOK, `{"pricing": {"total": 2890.55}}`)
	fairfaxFx := newFairfaxFixture(t, http.StatusOK, fairfaxResponseBody())
	unimed := newUnimedTestClient()

	svc := NewQuoteService(
		NewClassifier(testSpecialties()),
		[]CarrierClient{akadFx.client, fairfaxFx.client, unimed},
		repository.NewQuoteRepositoryMemory(),
		zap.NewNop(),
	)

	in := targetsInput(true, true, true)
	in.InternalClass = ""

	results, err := svc.QuoteAll(context.Background(), in)

	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Emptyf(t, r.Error, "carrier %s não devia falhar", r.Carrier)
		assert.GreaterOrEqual(t, r.TotalPremium, 0.0)
		assert.Equal(t, "BRL", r.Currency)
	}
}

// Seguradora com rejeição de subscrição devolve erro e prêmio zero, sem
// afetar as demais.
func TestQuoteAllRejectedCarrierKeepsOthers(t *testing.T) {
	akadFx := newAkadFixture(t, http.StatusOK, `{"pricing": {"total": 500}}`)
	fairfaxFx := newFairfaxFixture(t, http.StatusOK, fairfaxResponseBody())

	svc := NewQuoteService(
		NewClassifier(testSpecialties()),
		[]CarrierClient{akadFx.client, fairfaxFx.client},
		nil,
		zap.NewNop(),
	)

	in := targetsInput(true, true, false)
	in.ClaimsHistory5y = domain.ClaimsThreeOrMore
	total := 90_000.0
	in.TotalClaims5y = &total

	results, err := svc.QuoteAll(context.Background(), in)

	require.NoError(t, err)
	require.Len(t, results, 2)

	byCarrier := make(map[domain.CarrierID]domain.QuoteResult, 2)
	for _, r := range results {
		byCarrier[r.Carrier] = r
	}

	akadResult := byCarrier[domain.CarrierAkad]
	assert.NotEmpty(t, akadResult.Error)
	assert.Zero(t, akadResult.TotalPremium)
	assert.Zero(t, akadFx.quoteHits.Load())

	// Fairfax aceita 3+ sinistros e segue normalmente.
	assert.Empty(t, byCarrier[domain.CarrierFairfax].Error)
}
