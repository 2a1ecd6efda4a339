package domain

import "time"

// RiskClass é a "caixinha" interna da corretora para uma especialidade médica,
// independente de seguradora.
type RiskClass string

const (
	ClassSemCirurgia       RiskClass = "MEDICO_SEM_CIRURGIA"
	ClassComCirurgia       RiskClass = "MEDICO_COM_CIRURGIA"
	ClassObstetra          RiskClass = "OBSTETRA"
	ClassCirurgiaoPlastico RiskClass = "CIRURGIAO_PLASTICO"
)

// CarrierID identifica cada fonte de cotação.
type CarrierID string

const (
	CarrierAkad    CarrierID = "akad"
	CarrierFairfax CarrierID = "fairfax"
	CarrierUnimed  CarrierID = "unimed"
)

// ClaimsHistory5y: sinistros nos últimos 5 anos.
type ClaimsHistory string

const (
	ClaimsNone        ClaimsHistory = "NENHUM"
	ClaimsOne         ClaimsHistory = "UM"
	ClaimsTwo         ClaimsHistory = "DOIS"
	ClaimsThreeOrMore ClaimsHistory = "TRES_OU_MAIS"
)

// Notifications12m: reclamações nos últimos 12 meses.
type Notifications12m string

const (
	NotifNone      Notifications12m = "NENHUM"
	NotifOne       Notifications12m = "UMA"
	NotifTwoOrMore Notifications12m = "DUAS_OU_MAIS"
)

// DefenseCost: plano de custo de defesa.
type DefenseCost string

const (
	DefenseStandard DefenseCost = "STANDARD"
	DefensePlus     DefenseCost = "PLUS"
)

// PolicyStatus: segurado novo ou renovação de apólice existente.
type PolicyStatus string

const (
	PolicyNew     PolicyStatus = "NOVO"
	PolicyRenewal PolicyStatus = "RENOVACAO"
)

// Targets marca quais seguradoras devem ser cotadas.
type Targets struct {
	Akad    bool `json:"akad"`
	Fairfax bool `json:"fairfax"`
	Unimed  bool `json:"unimed"`
}

// Any reporta se pelo menos uma seguradora foi marcada.
func (t Targets) Any() bool {
	return t.Akad || t.Fairfax || t.Unimed
}

// PersonalData são os dados pessoais fixos enviados nas cotações.
type PersonalData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone,omitempty"`
}

// AkadExtras: campos que só a Akad pede.
type AkadExtras struct {
	PriorInsurer    string `json:"priorInsurer,omitempty"`    // Q2, só quando renovação
	DeductibleCode  int    `json:"deductibleCode,omitempty"`  // código de franquia (default 3)
	LastPolicyStart string `json:"lastPolicyStart,omitempty"` // Q13, ISO, só quando renovação
	LastPolicyEnd   string `json:"lastPolicyEnd,omitempty"`   // Q14
}

// FairfaxExtras: campos que só a Fairfax pede.
type FairfaxExtras struct {
	Resident       bool     `json:"resident"`
	MedicalExpert  *bool    `json:"medicalExpert,omitempty"` // nil = sim, o padrão do produto
	Procedures     []string `json:"procedures,omitempty"` // códigos PROCEDURES-ACTIVITIES
	Territoriality string   `json:"territoriality,omitempty"`
	Scope          string   `json:"scope,omitempty"`
	Deductible     string   `json:"deductible,omitempty"` // código DEDUCTIBLE (default "DEFAULT")
}

// UnimedExtras: opções da tabela local.
type UnimedExtras struct {
	HeadOfService     bool `json:"headOfService"`     // chefe de serviço
	TechnicalDirector bool `json:"technicalDirector"` // diretor técnico
}

type Extras struct {
	Akad    *AkadExtras    `json:"akad,omitempty"`
	Fairfax *FairfaxExtras `json:"fairfax,omitempty"`
	Unimed  *UnimedExtras  `json:"unimed,omitempty"`
}

// QuoteInput é a entrada única de cotação, independente de seguradora.
// Cada client aplica suas próprias regras de negócio sobre ela.
type QuoteInput struct {
	SpecialtyID   string    `json:"specialtyId"`
	InternalClass RiskClass `json:"internalClass,omitempty"` // opcional: resolvida pelo enquadramento se vazia

	CRM                string           `json:"crm"`
	Coverage           float64          `json:"coverage"` // importância segurada em R$
	ClaimsHistory5y    ClaimsHistory    `json:"claimsHistory5y"`
	TotalClaims5y      *float64         `json:"totalClaims5y,omitempty"` // obrigatório se sinistralidade != NENHUM
	Notifications12m   Notifications12m `json:"notifications12m"`
	PriorKnowledge     bool             `json:"priorKnowledge"`
	Claimants          string           `json:"claimants,omitempty"` // se PriorKnowledge
	RetroactivityYears int              `json:"retroactivityYears"`  // 0..10, 0 = sem retroatividade
	PolicyStatus       PolicyStatus     `json:"policyStatus"`
	DefenseCost        DefenseCost      `json:"defenseCost"`
	StartDate          time.Time        `json:"startDate"`

	Targets      Targets      `json:"targets"`
	PersonalData PersonalData `json:"personalData"`
	Extras       Extras       `json:"extras"`
}

// QuoteResult é a saída padronizada, um card por seguradora cotada.
type QuoteResult struct {
	Carrier      CarrierID `json:"carrier"`
	CarrierLabel string    `json:"carrierLabel"`
	Currency     string    `json:"currency"`
	TotalPremium float64   `json:"totalPremium"`

	Installments6x  *float64 `json:"installments6x,omitempty"`
	Installments10x *float64 `json:"installments10x,omitempty"`

	MaxInterestFreeCount  int     `json:"maxInterestFreeCount,omitempty"`
	MaxInterestFreeAmount float64 `json:"maxInterestFreeAmount,omitempty"`
	PaymentMethods        []string `json:"paymentMethods,omitempty"`

	Deductible string `json:"deductible,omitempty"`
	QuoteID    string `json:"quoteId,omitempty"`

	Error string `json:"error,omitempty"`
	Raw   any    `json:"raw,omitempty"` // resposta crua, só para diagnóstico
}

// Failed reporta se a cotação desta seguradora terminou em erro.
func (r QuoteResult) Failed() bool {
	return r.Error != ""
}
