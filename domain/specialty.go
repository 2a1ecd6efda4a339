package domain

import "time"

// SpecialtyInfo é uma especialidade já normalizada para lookup rápido.
type SpecialtyInfo struct {
	ID    string    `json:"id"`   // slug, ex.: "dermatologia"
	Name  string    `json:"nome"` // ex.: "Dermatologia"
	Class RiskClass `json:"enquadramento"`
}

// Token é uma credencial de curta duração de uma seguradora.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// RemainingFor reporta se o token ainda vale por pelo menos margin.
func (t Token) RemainingFor(margin time.Duration) bool {
	return t.AccessToken != "" && time.Until(t.ExpiresAt) > margin
}
