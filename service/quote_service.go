package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rcmulti/domain"
	"rcmulti/repository"
)

// CarrierClient é o contrato de cada fonte de cotação. Quote nunca devolve
// erro: falha de validação, transporte ou normalização vira um QuoteResult
// com o campo Error preenchido.
type CarrierClient interface {
	ID() domain.CarrierID
	Label() string
	Quote(ctx context.Context, in domain.QuoteInput) domain.QuoteResult
}

// QuoteService orquestra a cotação multi-seguradora: resolve o enquadramento
// uma vez, dispara cada seguradora marcada em paralelo e junta os resultados.
// A falha de uma seguradora nunca cancela nem atrasa as outras.
type QuoteService struct {
	classifier *Classifier
	clients    map[domain.CarrierID]CarrierClient
	repo       repository.QuoteRepository
	log        *zap.Logger
}

func NewQuoteService(
	classifier *Classifier,
	clients []CarrierClient,
	repo repository.QuoteRepository,
	log *zap.Logger,
) *QuoteService {
	byID := make(map[domain.CarrierID]CarrierClient, len(clients))
	for _, c := range clients {
		byID[c.ID()] = c
	}
	return &QuoteService{
		classifier: classifier,
		clients:    byID,
		repo:       repo,
		log:        log,
	}
}

// QuoteAll cota em todas as seguradoras marcadas no input e devolve um
// resultado por seguradora tentada, em ordem indefinida. Só input canônico
// malformado rejeita a chamada inteira.
func (s *QuoteService) QuoteAll(ctx context.Context, in domain.QuoteInput) ([]domain.QuoteResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	log := s.log.With(zap.String("requestId", requestID))

	targets := s.targeted(in.Targets)
	if len(targets) == 0 {
		return nil, errors.New("nenhuma seguradora disponível para os alvos marcados")
	}

	// O enquadramento é compartilhado: resolve uma vez. Se falhar, todas as
	// seguradoras marcadas recebem o mesmo resultado de erro — não é fatal.
	if in.InternalClass == "" {
		class, err := s.classifier.Resolve(in.SpecialtyID)
		if err != nil {
			log.Warn("especialidade sem enquadramento", zap.String("specialty", in.SpecialtyID))
			results := make([]domain.QuoteResult, 0, len(targets))
			for _, client := range targets {
				results = append(results, domain.QuoteResult{
					Carrier:      client.ID(),
					CarrierLabel: client.Label(),
					Currency:     DefaultCurrency,
					Error:        fmt.Sprintf("Especialidade %q sem enquadramento", in.SpecialtyID),
				})
			}
			return results, nil
		}
		in.InternalClass = class
	}

	log.Info("iniciando cotação",
		zap.String("specialty", in.SpecialtyID),
		zap.String("class", string(in.InternalClass)),
		zap.Float64("coverage", in.Coverage),
		zap.Int("carriers", len(targets)),
	)

	// Fan-out: uma goroutine por seguradora, sem cancelamento entre irmãs.
	ch := make(chan domain.QuoteResult, len(targets))
	var wg sync.WaitGroup
	for _, client := range targets {
		wg.Add(1)
		go func(client CarrierClient) {
			defer wg.Done()
			ch <- client.Quote(ctx, in)
		}(client)
	}
	wg.Wait()
	close(ch)

	results := make([]domain.QuoteResult, 0, len(targets))
	for r := range ch {
		if r.Failed() {
			log.Warn("seguradora falhou", zap.String("carrier", string(r.Carrier)), zap.String("error", r.Error))
		} else {
			log.Info("cotação concluída", zap.String("carrier", string(r.Carrier)), zap.Float64("premium", r.TotalPremium))
		}
		results = append(results, r)
	}

	// Gravação do histórico não é crítica.
	if s.repo != nil {
		if err := s.repo.Save(requestID, in, results); err != nil {
			log.Warn("falha ao gravar histórico de cotação", zap.Error(err))
		}
	}

	return results, nil
}

// Specialties expõe a lista de especialidades para a tela de autocomplete.
func (s *QuoteService) Specialties() []domain.SpecialtyInfo {
	return s.classifier.Specialties()
}

func (s *QuoteService) targeted(t domain.Targets) []CarrierClient {
	var out []CarrierClient
	add := func(id domain.CarrierID, wanted bool) {
		if !wanted {
			return
		}
		if client, ok := s.clients[id]; ok {
			out = append(out, client)
		}
	}
	add(domain.CarrierAkad, t.Akad)
	add(domain.CarrierFairfax, t.Fairfax)
	add(domain.CarrierUnimed, t.Unimed)
	return out
}

// validateInput cobre só o contrato canônico; regra de negócio é por
// seguradora, dentro de cada client.
func validateInput(in domain.QuoteInput) error {
	if in.SpecialtyID == "" && in.InternalClass == "" {
		return errors.New("informe a especialidade ou a classe interna")
	}
	if in.Coverage <= 0 {
		return errors.New("cobertura inválida")
	}
	if in.CRM == "" {
		return errors.New("informe o registro profissional (CRM)")
	}
	if in.RetroactivityYears < 0 || in.RetroactivityYears > MaxRetroactivityYears {
		return fmt.Errorf("retroatividade deve estar entre 0 e %d anos", MaxRetroactivityYears)
	}
	if !in.Targets.Any() {
		return errors.New("marque pelo menos uma seguradora")
	}
	return nil
}
