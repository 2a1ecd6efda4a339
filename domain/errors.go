package domain

import (
	"errors"
	"fmt"
)

// ErrSpecialtyNotFound: a especialidade não tem enquadramento cadastrado.
// É um problema de dados, não uma falha transitória.
var ErrSpecialtyNotFound = errors.New("especialidade sem enquadramento")

// UnsupportedClassError: a seguradora não tem código para a classe interna.
// Deve curto-circuitar o pipeline daquela seguradora antes de qualquer chamada.
type UnsupportedClassError struct {
	Carrier CarrierID
	Class   RiskClass
}

func (e *UnsupportedClassError) Error() string {
	return fmt.Sprintf("classe %s não suportada pela seguradora %s", e.Class, e.Carrier)
}

// ValidationError: regra de negócio de uma seguradora rejeitou o input.
// Nunca dispara chamada de rede e não invalida a cotação das demais.
type ValidationError struct {
	Carrier CarrierID
	Reason  string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
