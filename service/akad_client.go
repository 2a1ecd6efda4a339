package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"rcmulti/domain"
	"rcmulti/repository"
)

// AkadConfig: credenciais e endpoints da Akad, lidos uma vez na subida.
type AkadConfig struct {
	SubscriptionKey  string // Ocp-Apim-Subscription-Key
	ClientHeader     string // cabeçalho "Client"
	SecurityBaseURL  string
	TokenPath        string
	QuotationBaseURL string
	OperationCode    string
	Username         string
	Password         string
	ClientID         string
	ClientSecret     string
	BrokerCPF        string // BrokerIdentityPartyAdmin
	BrokerageCNPJ    string // BrokerageFirmIdentity, quando Assessoria
}

// AkadClient cota na Akad: obtém token (password grant) com os cabeçalhos
// exigidos, monta o payload RiskAnalysis e normaliza a resposta.
// Quote nunca devolve erro — toda falha vira um QuoteResult com Error.
type AkadClient struct {
	cfg        AkadConfig
	httpClient *http.Client
	translator *Translator
	tokens     repository.TokenCache
	group      singleflight.Group
	log        *zap.Logger
}

func NewAkadClient(
	cfg AkadConfig,
	translator *Translator,
	tokens repository.TokenCache,
	httpClient *http.Client,
	log *zap.Logger,
) *AkadClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: carrierHTTPTimeout}
	}
	return &AkadClient{
		cfg:        cfg,
		httpClient: httpClient,
		translator: translator,
		tokens:     tokens,
		log:        log.With(zap.String("carrier", string(domain.CarrierAkad))),
	}
}

func (c *AkadClient) ID() domain.CarrierID { return domain.CarrierAkad }
func (c *AkadClient) Label() string        { return "Akad" }

func (c *AkadClient) Quote(ctx context.Context, in domain.QuoteInput) domain.QuoteResult {
	trace := newAttemptTrace(c.log)
	trace.to(stateBuilding)

	// Regras de negócio antes de qualquer chamada.
	if ve := Evaluate(akadRules, in); ve != nil {
		trace.to(stateValidationFailed)
		return c.errorResult(ve.Reason, nil)
	}

	classCode, err := c.translator.Translate(domain.CarrierAkad, in.InternalClass)
	if err != nil {
		trace.to(stateFailed)
		return c.errorResult(fmt.Sprintf("Akad: %v", err), nil)
	}

	payload, err := c.buildPayload(in, classCode)
	if err != nil {
		trace.to(stateFailed)
		return c.errorResult(fmt.Sprintf("Akad: %v", err), nil)
	}
	trace.to(stateBuilt)

	token, err := c.token(ctx)
	if err != nil {
		trace.to(stateFailed)
		return c.errorResult(fmt.Sprintf("Falha ao obter token Akad: %v", err), nil)
	}
	trace.to(stateSent)

	body, err := c.postQuotation(ctx, token, payload)
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

func (c *AkadClient) errorResult(msg string, raw any) domain.QuoteResult {
	return domain.QuoteResult{
		Carrier:      domain.CarrierAkad,
		CarrierLabel: c.Label(),
		Currency:     DefaultCurrency,
		TotalPremium: 0,
		Error:        msg,
		Raw:          raw,
	}
}

// ====== payload ======

type akadQuestion struct {
	QuestionID string `json:"questionId"`
	Answer     any    `json:"answer"`
}

type akadPersonalData struct {
	Name     string `json:"Name"`
	Email    string `json:"Email"`
	Identity string `json:"Identity"`
}

type akadPayload struct {
	OperationCode            string           `json:"OperationCode"`
	RiskAnalysis             []akadQuestion   `json:"RiskAnalysis"`
	PersonalData             akadPersonalData `json:"PersonalData"`
	EffectiveDate            string           `json:"EffectiveDate"`
	DeductibleOption         int              `json:"deductibleOption"`
	BrokerIdentityPartyAdmin *string          `json:"BrokerIdentityPartyAdmin"`
	BrokerageFirmIdentity    *string          `json:"BrokerageFirmIdentity"`
	LeadIdentifier           *string          `json:"leadidentifier"`
}

func (c *AkadClient) buildPayload(in domain.QuoteInput, classCode string) (akadPayload, error) {
	var q []akadQuestion
	extras := in.Extras.Akad

	// Q1 - Novo segurado: 1=Sim (NOVO), 2=Não (RENOVAÇÃO)
	newInsured := mapAkadNewInsured(in.PolicyStatus)
	q = append(q, akadQuestion{QuestionID: "1", Answer: newInsured})

	// Q2 - Seguradora anterior (só quando renovação)
	if newInsured == "2" && extras != nil && extras.PriorInsurer != "" {
		q = append(q, akadQuestion{QuestionID: "2", Answer: extras.PriorInsurer})
	}

	// Q3 - Especialidade (classe interna -> código Akad, via tradutor)
	q = append(q, akadQuestion{QuestionID: "3", Answer: classCode})

	// Q4 - Importância segurada (valor -> código)
	coverageCode, err := mapAkadCoverage(in.Coverage)
	if err != nil {
		return akadPayload{}, err
	}
	q = append(q, akadQuestion{QuestionID: "4", Answer: coverageCode})

	// Q5 - CRM
	q = append(q, akadQuestion{QuestionID: "5", Answer: in.CRM})

	// Q6 - Sinistralidade 5 anos
	claimsCode, err := mapAkadClaims(in.ClaimsHistory5y)
	if err != nil {
		return akadPayload{}, err
	}
	q = append(q, akadQuestion{QuestionID: "6", Answer: claimsCode})

	// Q37 - Soma total de sinistros (obrigatório se Q6 != 1; se 1, enviar null)
	if in.ClaimsHistory5y != domain.ClaimsNone {
		total := 0.0
		if in.TotalClaims5y != nil {
			total = *in.TotalClaims5y
		}
		q = append(q, akadQuestion{QuestionID: "37", Answer: fmt.Sprintf("%.2f", total)})
	} else {
		q = append(q, akadQuestion{QuestionID: "37", Answer: nil})
	}

	// Q7 - Reclamações 12 meses
	notifCode, err := mapAkadNotifications(in.Notifications12m)
	if err != nil {
		return akadPayload{}, err
	}
	q = append(q, akadQuestion{QuestionID: "7", Answer: notifCode})

	// Q8 - Conhecimento prévio
	q = append(q, akadQuestion{QuestionID: "8", Answer: mapAkadYesNo(in.PriorKnowledge)})

	// Q9 - Reclamantes (se Q8=Sim e houver nomes)
	if in.PriorKnowledge && in.Claimants != "" {
		q = append(q, akadQuestion{QuestionID: "9", Answer: in.Claimants})
	}

	// Q11 - Retroatividade (anos -> código)
	retroCode, err := mapAkadRetroactivity(in.RetroactivityYears)
	if err != nil {
		return akadPayload{}, err
	}
	q = append(q, akadQuestion{QuestionID: "11", Answer: retroCode})

	// Q12 - Congênere: RENOVAÇÃO => 1, NOVO => 2
	congener := "2"
	if in.PolicyStatus == domain.PolicyRenewal {
		congener = "1"
	}
	q = append(q, akadQuestion{QuestionID: "12", Answer: congener})

	// Q13/Q14 - Vigência da última apólice (só quando renovação)
	if newInsured == "2" && extras != nil {
		if extras.LastPolicyStart != "" {
			q = append(q, akadQuestion{QuestionID: "13", Answer: extras.LastPolicyStart})
		}
		if extras.LastPolicyEnd != "" {
			q = append(q, akadQuestion{QuestionID: "14", Answer: extras.LastPolicyEnd})
		}
	}

	// Q35 - Custo de defesa
	q = append(q, akadQuestion{QuestionID: "35", Answer: mapAkadDefenseCost(in.DefenseCost)})

	deductible := AkadDefaultDeductible
	if extras != nil && extras.DeductibleCode != 0 {
		deductible = extras.DeductibleCode
	}

	return akadPayload{
		OperationCode:            c.cfg.OperationCode,
		RiskAnalysis:             q,
		PersonalData:             c.buildPersonalData(in),
		EffectiveDate:            in.StartDate.UTC().Format(time.RFC3339),
		DeductibleOption:         deductible,
		BrokerIdentityPartyAdmin: optional(c.cfg.BrokerCPF),
		BrokerageFirmIdentity:    optional(c.cfg.BrokerageCNPJ),
		LeadIdentifier:           nil,
	}, nil
}

func (c *AkadClient) buildPersonalData(in domain.QuoteInput) akadPersonalData {
	pd := akadPersonalData{
		Name:     in.PersonalData.Name,
		Email:    in.PersonalData.Email,
		Identity: in.PersonalData.CPF,
	}
	// Dados pessoais estáticos da parceria quando o form não preencher.
	if pd.Name == "" {
		pd.Name = "MEDICO PF API"
	}
	if pd.Email == "" {
		pd.Email = "parcerias-api@akadseguros.com.br"
	}
	if pd.Identity == "" {
		pd.Identity = "00000000191"
	}
	return pd
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ====== mapeamentos de valores ======

func mapAkadNewInsured(p domain.PolicyStatus) string {
	if p == domain.PolicyNew {
		return "1"
	}
	return "2"
}

// Cobertura (R$) -> código Q4. Valor fora da grade é erro, nunca aproximação:
// arredondar mudaria o sentido comercial da cotação.
var akadCoverageCodes = map[int]string{
	30_000: "1", 50_000: "2", 75_000: "3", 100_000: "4", 150_000: "5",
	200_000: "6", 250_000: "7", 300_000: "8", 400_000: "9", 500_000: "10",
	600_000: "11", 700_000: "12", 800_000: "13", 900_000: "14", 1_000_000: "15",
	1_500_000: "16", 2_000_000: "17", 2_500_000: "18", 3_000_000: "19",
	3_500_000: "20", 4_000_000: "21", 4_500_000: "22", 5_000_000: "23",
}

func mapAkadCoverage(v float64) (string, error) {
	if code, ok := akadCoverageCodes[int(v)]; ok && v == math.Trunc(v) {
		return code, nil
	}
	return "", fmt.Errorf("cobertura R$ %.2f não mapeada para a Akad (Q4)", v)
}

func mapAkadClaims(s domain.ClaimsHistory) (string, error) {
	switch s {
	case domain.ClaimsNone:
		return "1", nil
	case domain.ClaimsOne:
		return "2", nil
	case domain.ClaimsTwo:
		return "3", nil
	case domain.ClaimsThreeOrMore:
		return "4", nil
	}
	return "", fmt.Errorf("sinistralidade %q não mapeada (Q6)", s)
}

func mapAkadNotifications(r domain.Notifications12m) (string, error) {
	switch r {
	case domain.NotifNone:
		return "1", nil
	case domain.NotifOne:
		return "2", nil
	case domain.NotifTwoOrMore:
		return "3", nil
	}
	return "", fmt.Errorf("reclamações %q não mapeadas (Q7)", r)
}

func mapAkadYesNo(v bool) string {
	if v {
		return "1"
	}
	return "2"
}

// Retroatividade: 0=Sem -> '6', 1..5 -> '1'..'5', 6..10 -> '13'..'17'.
func mapAkadRetroactivity(years int) (string, error) {
	switch {
	case years == 0:
		return "6", nil
	case years >= 1 && years <= 5:
		return fmt.Sprintf("%d", years), nil
	case years >= 6 && years <= MaxRetroactivityYears:
		return fmt.Sprintf("%d", years+7), nil
	}
	return "", fmt.Errorf("retroatividade de %d anos não mapeada (Q11)", years)
}

func mapAkadDefenseCost(v domain.DefenseCost) string {
	if v == domain.DefensePlus {
		return "2"
	}
	return "1"
}

// ====== token ======

// token devolve um token válido, renovando quando faltar menos que a margem.
// singleflight garante uma só renovação mesmo com cotações concorrentes.
func (c *AkadClient) token(ctx context.Context) (string, error) {
	if tok, ok := c.tokens.Get(ctx, string(domain.CarrierAkad)); ok && tok.RemainingFor(TokenRefreshMargin) {
		return tok.AccessToken, nil
	}

	v, err, _ := c.group.Do("token", func() (any, error) {
		tok, err := c.fetchToken(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.tokens.Set(ctx, string(domain.CarrierAkad), tok); err != nil {
			c.log.Warn("falha ao gravar token no cache", zap.Error(err))
		}
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(domain.Token).AccessToken, nil
}

func (c *AkadClient) fetchToken(ctx context.Context) (domain.Token, error) {
	form := url.Values{
		"grant_type":    {"password"},
		"username":      {c.cfg.Username},
		"password":      {c.cfg.Password},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}

	endpoint := c.cfg.SecurityBaseURL + c.cfg.TokenPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)
	req.Header.Set("Client", c.cfg.ClientHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Token{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Token{}, fmt.Errorf("token HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		AccessToken string      `json:"access_token"`
		ExpiresIn   json.Number `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Token{}, err
	}
	if out.AccessToken == "" {
		return domain.Token{}, fmt.Errorf("resposta de token sem access_token")
	}

	lifetime := AkadTokenLifetimeFallback
	if secs, err := out.ExpiresIn.Int64(); err == nil && secs > 0 {
		lifetime = time.Duration(secs) * time.Second
	}
	return domain.Token{
		AccessToken: out.AccessToken,
		ExpiresAt:   time.Now().Add(lifetime),
	}, nil
}

// ====== transporte ======

func (c *AkadClient) postQuotation(ctx context.Context, token string, payload akadPayload) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("Akad: payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.QuotationBaseURL+"/quotation", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Falha ao cotar na Akad: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Falha ao ler resposta da Akad: %v", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("Akad: HTTP %d - %s", resp.StatusCode, friendlyBody(body))
	}
	return body, nil
}

// friendlyBody extrai a mensagem do corpo de erro, quando houver.
func friendlyBody(body []byte) string {
	var probe struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err == nil {
		if probe.Error != nil && probe.Error.Message != "" {
			return probe.Error.Message
		}
		if probe.Message != "" {
			return probe.Message
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// ====== normalização ======

type akadResponse struct {
	Pricing *struct {
		Total        json.Number            `json:"total"`
		Installments map[string]json.Number `json:"installments"`
	} `json:"pricing"`
	Preco *struct {
		AVista      json.Number `json:"avista"`
		Parcelas6x  json.Number `json:"parcelas6x"`
		Parcelas10x json.Number `json:"parcelas10x"`
	} `json:"preco"`
	Price *struct {
		Total json.Number `json:"total"`
	} `json:"price"`
	QuoteID json.RawMessage `json:"quoteId"`
	ID      json.RawMessage `json:"id"`
}

// normalize converte a resposta (que já apareceu com mais de um shape entre
// versões da API) para o resultado canônico. Prêmio total é obrigatório:
// sem ele o resultado inteiro vira erro.
func (c *AkadClient) normalize(body []byte) (domain.QuoteResult, error) {
	var raw any
	_ = json.Unmarshal(body, &raw)

	var resp akadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.QuoteResult{Raw: raw}, fmt.Errorf("Akad: resposta inválida: %v", err)
	}

	result := domain.QuoteResult{
		Carrier:      domain.CarrierAkad,
		CarrierLabel: c.Label(),
		Currency:     DefaultCurrency,
		QuoteID:      firstRawString(resp.QuoteID, resp.ID),
		Raw:          raw,
	}

	total, ok := 0.0, false
	if resp.Pricing != nil {
		if total, ok = asFinite(resp.Pricing.Total); ok {
			if v, fine := asFinite(resp.Pricing.Installments["6x"]); fine {
				result.Installments6x = &v
			}
			if v, fine := asFinite(resp.Pricing.Installments["10x"]); fine {
				result.Installments10x = &v
			}
		}
	}
	if !ok && resp.Preco != nil {
		if total, ok = asFinite(resp.Preco.AVista); ok {
			if v, fine := asFinite(resp.Preco.Parcelas6x); fine {
				result.Installments6x = &v
			}
			if v, fine := asFinite(resp.Preco.Parcelas10x); fine {
				result.Installments10x = &v
			}
		}
	}
	if !ok && resp.Price != nil {
		total, ok = asFinite(resp.Price.Total)
	}
	if !ok {
		return result, fmt.Errorf("Akad: resposta sem prêmio total")
	}

	result.TotalPremium = total
	return result, nil
}

// asFinite coage um json.Number para float64, rejeitando NaN/Inf e ausência.
func asFinite(n json.Number) (float64, bool) {
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// firstRawString devolve a primeira mensagem JSON que vira string ou número.
func firstRawString(candidates ...json.RawMessage) string {
	for _, raw := range candidates {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}
