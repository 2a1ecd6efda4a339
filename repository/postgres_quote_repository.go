package repository

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"rcmulti/domain"
)

// PostgresQuoteRepository grava um registro por seguradora cotada, para o
// histórico de cotações e os relatórios da corretora.
type PostgresQuoteRepository struct {
	db *sql.DB
}

// NewPostgresQuoteRepository abre a conexão, roda a migração e devolve o
// repositório pronto para uso.
func NewPostgresQuoteRepository(dsn string) (*PostgresQuoteRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	repo := &PostgresQuoteRepository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return repo, nil
}

func (r *PostgresQuoteRepository) migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS rc_quotes (
			id            SERIAL PRIMARY KEY,
			request_id    VARCHAR(36)   NOT NULL,
			carrier       VARCHAR(20)   NOT NULL,
			specialty     TEXT          NOT NULL,
			risk_class    VARCHAR(40)   NOT NULL DEFAULT '',
			coverage      NUMERIC(14,2) NOT NULL,
			total_premium NUMERIC(14,2) NOT NULL DEFAULT 0,
			quote_ref     TEXT          NOT NULL DEFAULT '',
			error         TEXT          NOT NULL DEFAULT '',
			quoted_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_rc_quotes_request ON rc_quotes(request_id);
		CREATE INDEX IF NOT EXISTS idx_rc_quotes_carrier ON rc_quotes(carrier);
	`)
	return err
}

func (r *PostgresQuoteRepository) Save(
	requestID string,
	input domain.QuoteInput,
	results []domain.QuoteResult,
) error {
	for _, res := range results {
		_, err := r.db.Exec(`
			INSERT INTO rc_quotes
				(request_id, carrier, specialty, risk_class, coverage, total_premium, quote_ref, error)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			requestID, string(res.Carrier), input.SpecialtyID, string(input.InternalClass),
			input.Coverage, res.TotalPremium, res.QuoteID, res.Error,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert quote: %w", err)
		}
	}
	return nil
}

func (r *PostgresQuoteRepository) Close() error {
	return r.db.Close()
}
