package repository

import "rcmulti/domain"

// QuoteRepository persiste o resultado de uma agregação de cotações.
// O motor nunca depende do resultado do Save: falha de gravação é apenas logada.
type QuoteRepository interface {
	Save(requestID string, input domain.QuoteInput, results []domain.QuoteResult) error
}
