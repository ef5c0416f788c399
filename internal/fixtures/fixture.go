package fixtures

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Vocabulário comum dos provedores de fixtures. Cada cliente mapeia o shape
// nativo da sua API para RawFixture/MatchStatus antes de devolver ao locator.

type MatchStatus int

const (
	StatusUnknown MatchStatus = iota
	StatusNotStarted
	StatusInProgress
	StatusFinished
	StatusAbnormal // adiado, cancelado, abandonado
)

func (s MatchStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusInProgress:
		return "in_progress"
	case StatusFinished:
		return "finished"
	case StatusAbnormal:
		return "abnormal"
	}
	return "unknown"
}

// RawFixture é o fixture como reportado por um provedor. Efêmero: vive só
// dentro de um passe de resolução, nunca é persistido.
type RawFixture struct {
	HomeTeam  string
	AwayTeam  string
	HomeGoals *int // nil enquanto não jogado
	AwayGoals *int
	Status    MatchStatus
	Elapsed   int    // minuto corrente quando em andamento
	Source    string // tag do provedor que respondeu
}

// Score formata o placar "H-A"; vazio enquanto não houver gols reportados
func (f RawFixture) Score() string {
	if f.HomeGoals == nil || f.AwayGoals == nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", *f.HomeGoals, *f.AwayGoals)
}

// Provider é a capacidade comum dos provedores estruturados. Adicionar uma
// fonte nova é implementar a interface, não ramificar o locator.
type Provider interface {
	Name() string
	FixturesByDate(ctx context.Context, date time.Time) ([]RawFixture, error)
}

// ErrRateLimited sinaliza 429/403 do provedor; o chamador pula para o próximo
// fallback em vez de abortar o passe
var ErrRateLimited = errors.New("provider rate limited")
