package service

import "time"

const (
	// DefaultCurrency: todas as seguradoras integradas cotam em reais.
	DefaultCurrency = "BRL"

	// AkadPlusMinCoverage: Honorários Plus (Q35) só a partir desta cobertura.
	// Valor da documentação da Akad; confirmar a cada revisão de contrato.
	AkadPlusMinCoverage = 75_000.0

	// AkadDefaultDeductible: código de franquia usado quando a tela não escolhe.
	AkadDefaultDeductible = 3

	// AkadTokenLifetimeFallback: usado quando o endpoint de token não devolve expires_in.
	AkadTokenLifetimeFallback = 1800 * time.Second

	// TokenRefreshMargin: renova o token quando faltar menos que isto para vencer,
	// em vez de reagir ao 401.
	TokenRefreshMargin = 60 * time.Second

	// FairfaxDefaultDeductible: código DEDUCTIBLE quando não há override.
	FairfaxDefaultDeductible = "DEFAULT"

	carrierHTTPTimeout = 30 * time.Second

	// MaxRetroactivityYears: limite do formulário; acima disso não há código Q11.
	MaxRetroactivityYears = 10
)
