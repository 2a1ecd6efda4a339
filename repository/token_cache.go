package repository

import (
	"context"

	"rcmulti/domain"
)

// TokenCache guarda tokens de acesso por seguradora. Refresh concorrente é
// deduplicado na camada de serviço; aqui vale last-write-wins.
type TokenCache interface {
	Get(ctx context.Context, carrier string) (domain.Token, bool)
	Set(ctx context.Context, carrier string, token domain.Token) error
}
