package model

import "time"

// Estados do ciclo de vida de um pronostic. WON/LOST/VOID são terminais:
// o motor nunca os reescreve sozinho, só via correção explícita de operador.
const (
	StatusPending = "PENDING"
	StatusLive    = "LIVE"
	StatusWon     = "WON"
	StatusLost    = "LOST"
	StatusVoid    = "VOID"
)

// Terminal informa se um status encerra o pronostic
func Terminal(status string) bool {
	switch status {
	case StatusWon, StatusLost, StatusVoid:
		return true
	}
	return false
}

// Prediction é o pronostic editorial persistido no Postgres.
// Os nomes de time são texto livre do editor, sem garantia de bater com a
// grafia de nenhum provedor. O motor só muda status/score/resolução.
type Prediction struct {
	ID             string
	Sport          string
	HomeTeam       string
	AwayTeam       string
	Bet            string // descrição livre da aposta
	Odds           float64
	KickoffAt      time.Time
	Status         string
	ScoreLive      string // "H-A", eventualmente anotado com o minuto
	ResolvedAt     *time.Time
	CorrectionNote string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserBet é o snapshot desnormalizado tirado quando o usuário seguiu o
// pronostic. Referência fraca por prediction_id; o motor só sincroniza o
// status, nunca cria nem apaga.
type UserBet struct {
	ID           string
	UserID       string
	PredictionID string
	HomeTeam     string
	AwayTeam     string
	Bet          string
	Odds         float64
	StakeCents   int64
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
