package events

import "time"

// Evento publicado no tópico "prediction_resolved" quando o motor fecha um pronostic
type PredictionResolved struct {
	PredictionID string    `json:"prediction_id"`
	Status       string    `json:"status"` // "WON" | "LOST" | "VOID"
	FinalScore   string    `json:"final_score,omitempty"`
	Bet          string    `json:"bet"`
	Odds         float64   `json:"odds"`
	UserBets     int64     `json:"user_bets"` // snapshots sincronizados
	Corrected    bool      `json:"corrected,omitempty"`
	Ts           time.Time `json:"ts"`
}
