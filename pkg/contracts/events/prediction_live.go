package events

import "time"

// Evento publicado no tópico "prediction_live" a cada mudança de placar ao vivo
type PredictionLive struct {
	PredictionID string    `json:"prediction_id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Score        string    `json:"score"` // "H-A"
	Elapsed      int       `json:"elapsed,omitempty"`
	Bet          string    `json:"bet"`
	Odds         float64   `json:"odds"`
	Ts           time.Time `json:"ts"`
}
