package topics

const (
	// Resolução de pronostics
	PredictionLive     = "prediction_live"
	PredictionResolved = "prediction_resolved"
)

// Canal Redis Pub/Sub usado pelo live-gateway para fanout via WebSocket
const PredictionsBroadcast = "predictions_broadcast"
