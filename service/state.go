package service

import "go.uber.org/zap"

// attemptState acompanha o ciclo de vida de uma tentativa de cotação em uma
// seguradora. Estados terminais: VALIDATION_FAILED, FAILED e NORMALIZED —
// todos viram um QuoteResult, com ou sem erro.
type attemptState string

const (
	statePending          attemptState = "PENDING"
	stateBuilding         attemptState = "BUILDING"
	stateValidationFailed attemptState = "VALIDATION_FAILED"
	stateBuilt            attemptState = "BUILT"
	stateSent             attemptState = "SENT"
	stateFailed           attemptState = "FAILED"
	stateReceived         attemptState = "RECEIVED"
	stateNormalized       attemptState = "NORMALIZED"
)

var attemptTransitions = map[attemptState][]attemptState{
	statePending:  {stateBuilding},
	stateBuilding: {stateValidationFailed, stateBuilt, stateFailed},
	// seguradoras de tabela local não têm fase de envio
	stateBuilt:    {stateSent, stateFailed, stateNormalized},
	stateSent:     {stateFailed, stateReceived},
	stateReceived: {stateNormalized, stateFailed},
}

// attemptTrace registra as transições de estado de uma tentativa no log.
type attemptTrace struct {
	log   *zap.Logger
	state attemptState
}

func newAttemptTrace(log *zap.Logger) *attemptTrace {
	return &attemptTrace{log: log, state: statePending}
}

// to move a tentativa para o próximo estado. Transição desconhecida é bug de
// pipeline; logamos e seguimos, nunca derrubamos uma cotação por isso.
func (t *attemptTrace) to(next attemptState) {
	allowed := false
	for _, s := range attemptTransitions[t.state] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		t.log.Warn("transição de estado inesperada",
			zap.String("from", string(t.state)),
			zap.String("to", string(next)),
		)
	}
	t.state = next
	t.log.Debug("cotação", zap.String("state", string(next)))
}
