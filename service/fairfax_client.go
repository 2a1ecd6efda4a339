package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"rcmulti/domain"
)

// FairfaxConfig: endpoint e credenciais da Fairfax.
type FairfaxConfig struct {
	QuotationURL  string
	OperationCode string
	APIKeyHeader  string
	APIKeyValue   string
	BearerToken   string
}

// FairfaxClient monta o payload no formato answers[] e normaliza o retorno.
// A Fairfax ainda não publicou um response oficial, então a normalização é
// tolerante: tenta os campos conhecidos em ordem antes de considerar ausente.
type FairfaxClient struct {
	cfg        FairfaxConfig
	httpClient *http.Client
	translator *Translator
	log        *zap.Logger
}

func NewFairfaxClient(
	cfg FairfaxConfig,
	translator *Translator,
	httpClient *http.Client,
	log *zap.Logger,
) *FairfaxClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: carrierHTTPTimeout}
	}
	return &FairfaxClient{
		cfg:        cfg,
		httpClient: httpClient,
		translator: translator,
		log:        log.With(zap.String("carrier", string(domain.CarrierFairfax))),
	}
}

func (c *FairfaxClient) ID() domain.CarrierID { return domain.CarrierFairfax }
func (c *FairfaxClient) Label() string        { return "Fairfax" }

func (c *FairfaxClient) Quote(ctx context.Context, in domain.QuoteInput) domain.QuoteResult {
	trace := newAttemptTrace(c.log)
	trace.to(stateBuilding)

	if c.cfg.QuotationURL == "" {
		trace.to(stateFailed)
		return c.errorResult("Fairfax: endpoint de cotação não configurado", nil)
	}

	// A classe precisa ter código Fairfax antes de qualquer chamada.
	classCode, err := c.translator.Translate(domain.CarrierFairfax, in.InternalClass)
	if err != nil {
		trace.to(stateFailed)
		return c.errorResult(fmt.Sprintf("Fairfax: %v", err), nil)
	}

	payload := c.buildPayload(in, classCode)
	trace.to(stateBuilt)

	trace.to(stateSent)
	body, err := c.post(ctx, payload)
	if err != nil {
		trace.to(stateFailed)
		return c.errorResult(err.Error(), nil)
	}
	trace.to(stateReceived)

	result, err := c.normalize(body)
	if err != nil {
		trace.to(stateFailed)
		return c.errorResult(err.Error(), result.Raw)
	}
	trace.to(stateNormalized)
	return result
}

func (c *FairfaxClient) errorResult(msg string, raw any) domain.QuoteResult {
	return domain.QuoteResult{
		Carrier:      domain.CarrierFairfax,
		CarrierLabel: c.Label(),
		Currency:     DefaultCurrency,
		TotalPremium: 0,
		Error:        msg,
		Raw:          raw,
	}
}

// ====== payload ======

type fairfaxAnswer struct {
	Code   string `json:"code"`
	Answer any    `json:"answer"`
}

type fairfaxPayload struct {
	OperationCode  string          `json:"operationCode"`
	RegisterNumber string          `json:"registerNumber"`
	Answers        []fairfaxAnswer `json:"answers"`
}

func (c *FairfaxClient) buildPayload(in domain.QuoteInput, classCode string) fairfaxPayload {
	extras := in.Extras.Fairfax

	congener := "EXISTING"
	if in.PolicyStatus == domain.PolicyNew {
		congener = "NEW"
	}

	resident := false
	medicalExpert := true
	territoriality := "BR"
	scope := "NATIONAL"
	deductible := FairfaxDefaultDeductible
	var procedures []string
	if extras != nil {
		resident = extras.Resident
		// Ausente é diferente de false: só sobrescreve quando veio explícito.
		if extras.MedicalExpert != nil {
			medicalExpert = *extras.MedicalExpert
		}
		procedures = extras.Procedures
		if extras.Territoriality != "" {
			territoriality = extras.Territoriality
		}
		if extras.Scope != "" {
			scope = extras.Scope
		}
		if extras.Deductible != "" {
			deductible = extras.Deductible
		}
	}

	answers := []fairfaxAnswer{
		{Code: "MODALITY", Answer: "MEDICAL-CIVIL-LIABILITY"},
		{Code: "MEDICAL-EXPERT", Answer: medicalExpert},
		{Code: "PERSON-TYPE", Answer: "NATURAL"},
		{Code: "CONGENER", Answer: congener},
		{Code: "START-VIGENCY-DATE", Answer: in.StartDate.UTC().Format("2006-01-02T15:04:05.000Z")},
		{Code: "IDENTITY", Answer: in.PersonalData.CPF},
		{Code: "INSURED-NAME", Answer: in.PersonalData.Name},
		{Code: "INSURED-EMAIL", Answer: in.PersonalData.Email},
		{Code: "PROFESSIONAL-REGISTER", Answer: in.CRM},
	}

	// Categoria só vai quando a classe tem código de categoria próprio.
	if classCode == "OBSTETRICIAN" {
		answers = append(answers, fairfaxAnswer{Code: "CATEGORIES", Answer: []string{classCode}})
	}

	answers = append(answers, fairfaxAnswer{Code: "RESIDENT", Answer: resident})

	if len(procedures) > 0 {
		answers = append(answers, fairfaxAnswer{Code: "PROCEDURES-ACTIVITIES", Answer: procedures})
	}

	answers = append(answers,
		fairfaxAnswer{Code: "RETROACTIVITY", Answer: in.RetroactivityYears},
		fairfaxAnswer{Code: "CLAIMS", Answer: mapFairfaxClaims(in.ClaimsHistory5y)},
		fairfaxAnswer{Code: "CLAIM-EXPECTATION", Answer: in.PriorKnowledge},
		fairfaxAnswer{Code: "TERRITORIALITY", Answer: territoriality},
		fairfaxAnswer{Code: "SCOPE", Answer: scope},
		// Limite + franquia vão em matriz, como no contrato.
		fairfaxAnswer{Code: "LIMIT-DEDUCTIBLE", Answer: [][]fairfaxAnswer{{
			{Code: "LIMIT", Answer: in.Coverage},
			{Code: "DEDUCTIBLE", Answer: deductible},
		}}},
	)

	return fairfaxPayload{
		OperationCode:  c.cfg.OperationCode,
		RegisterNumber: in.CRM,
		Answers:        answers,
	}
}

// CLAIMS vai como texto: "0", "1", "2" ou "3+".
func mapFairfaxClaims(s domain.ClaimsHistory) string {
	switch s {
	case domain.ClaimsOne:
		return "1"
	case domain.ClaimsTwo:
		return "2"
	case domain.ClaimsThreeOrMore:
		return "3+"
	default:
		return "0"
	}
}

// ====== transporte ======

func (c *FairfaxClient) post(ctx context.Context, payload fairfaxPayload) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("Fairfax: payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.QuotationURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	if c.cfg.APIKeyHeader != "" && c.cfg.APIKeyValue != "" {
		req.Header.Set(c.cfg.APIKeyHeader, c.cfg.APIKeyValue)
	}
	if c.cfg.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Falha ao cotar na Fairfax: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Falha ao ler resposta da Fairfax: %v", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("Fairfax: HTTP %d - %s", resp.StatusCode, friendlyBody(body))
	}
	return body, nil
}

// ====== normalização ======

type fairfaxInstallment struct {
	InstallmentNumber json.Number `json:"installmentNumber"`
	TotalInstallment  json.Number `json:"totalInstallment"`
	TotalValue        json.Number `json:"totalValue"`
	InterestValue     json.Number `json:"interestValue"`
	// A API de homologação devolve o campo com este typo.
	InsterestValue json.Number `json:"insterestValue"`
}

type fairfaxPaymentOption struct {
	Type         string               `json:"type"`
	Installments []fairfaxInstallment `json:"installments"`
}

type fairfaxResponse struct {
	TotalAmount    json.Number            `json:"totalAmount"`
	Premium        json.Number            `json:"premium"`
	GrossPremium   json.Number            `json:"grossPremium"`
	NetPremium     json.Number            `json:"netPremium"`
	QuoteID        json.RawMessage        `json:"quoteId"`
	ID             json.RawMessage        `json:"id"`
	PaymentOptions []fairfaxPaymentOption `json:"paymentOptions"`
}

func (c *FairfaxClient) normalize(body []byte) (domain.QuoteResult, error) {
	var raw any
	_ = json.Unmarshal(body, &raw)

	var resp fairfaxResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.QuoteResult{Raw: raw}, fmt.Errorf("Fairfax: resposta inválida: %v", err)
	}

	result := domain.QuoteResult{
		Carrier:      domain.CarrierFairfax,
		CarrierLabel: c.Label(),
		Currency:     DefaultCurrency,
		QuoteID:      firstRawString(resp.QuoteID, resp.ID),
		Raw:          raw,
	}

	total, ok := firstFinite(resp.TotalAmount, resp.Premium, resp.GrossPremium, resp.NetPremium)
	if !ok {
		return result, fmt.Errorf("Fairfax: resposta sem prêmio total")
	}
	result.TotalPremium = total

	if v, fine := pickInstallmentAmount(resp.PaymentOptions, 6); fine {
		result.Installments6x = &v
	}
	if v, fine := pickInstallmentAmount(resp.PaymentOptions, 10); fine {
		result.Installments10x = &v
	}
	if n, amount, fine := findMaxNoInterest(resp.PaymentOptions); fine {
		result.MaxInterestFreeCount = n
		result.MaxInterestFreeAmount = amount
	}
	result.PaymentMethods = listPaymentTypes(resp.PaymentOptions)

	return result, nil
}

func firstFinite(candidates ...json.Number) (float64, bool) {
	for _, n := range candidates {
		if v, ok := asFinite(n); ok {
			return v, true
		}
	}
	return 0, false
}

func (i fairfaxInstallment) amount() (float64, bool) {
	return firstFinite(i.TotalInstallment, i.TotalValue)
}

func (i fairfaxInstallment) interest() float64 {
	if v, ok := firstFinite(i.InterestValue, i.InsterestValue); ok {
		return v
	}
	return 0
}

// pickInstallmentAmount acha o menor valor da parcela n entre as opções.
func pickInstallmentAmount(opts []fairfaxPaymentOption, n int) (float64, bool) {
	var best float64
	found := false
	for _, opt := range opts {
		for _, inst := range opt.Installments {
			num, err := inst.InstallmentNumber.Int64()
			if err != nil || int(num) != n {
				continue
			}
			val, ok := inst.amount()
			if !ok {
				continue
			}
			if !found || val < best {
				best = val
				found = true
			}
		}
	}
	return best, found
}

// findMaxNoInterest acha o maior parcelamento sem juros e o valor da parcela.
func findMaxNoInterest(opts []fairfaxPaymentOption) (int, float64, bool) {
	maxN := 0
	var bestAmount float64
	for _, opt := range opts {
		for _, inst := range opt.Installments {
			num, err := inst.InstallmentNumber.Int64()
			if err != nil || inst.interest() != 0 {
				continue
			}
			val, ok := inst.amount()
			if !ok {
				continue
			}
			n := int(num)
			switch {
			case n > maxN:
				maxN = n
				bestAmount = val
			case n == maxN && val < bestAmount:
				bestAmount = val
			}
		}
	}
	if maxN == 0 {
		return 0, 0, false
	}
	return maxN, bestAmount, true
}

func listPaymentTypes(opts []fairfaxPaymentOption) []string {
	seen := make(map[string]struct{})
	var types []string
	for _, opt := range opts {
		if opt.Type == "" {
			continue
		}
		if _, dup := seen[opt.Type]; dup {
			continue
		}
		seen[opt.Type] = struct{}{}
		types = append(types, opt.Type)
	}
	return types
}
