package repository

import (
	"sync"

	"rcmulti/domain"
)

type savedAggregation struct {
	RequestID string
	Input     domain.QuoteInput
	Results   []domain.QuoteResult
}

// QuoteRepositoryMemory é a implementação em memória de QuoteRepository.
type QuoteRepositoryMemory struct {
	mu   sync.Mutex
	data []savedAggregation
}

func NewQuoteRepositoryMemory() *QuoteRepositoryMemory {
	return &QuoteRepositoryMemory{}
}

func (r *QuoteRepositoryMemory) Save(
	requestID string,
	input domain.QuoteInput,
	results []domain.QuoteResult,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, savedAggregation{
		RequestID: requestID,
		Input:     input,
		Results:   results,
	})
	return nil
}

// Len devolve quantas agregações foram gravadas.
func (r *QuoteRepositoryMemory) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}
