package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// PredictionID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type         string `json:"type"`         // subscribe | unsubscribe | ping
	PredictionID string `json:"predictionId"` // requerido em subscribe/unsubscribe
}

// Update representa uma atualização de pronostic enviada aos clientes.
// O shape bate com o que o resolution-worker publica no Redis.
type Update struct {
	PredictionID string      `json:"predictionId"`
	Type         string      `json:"type"` // live | resolved
	Payload      interface{} `json:"payload"`
}
