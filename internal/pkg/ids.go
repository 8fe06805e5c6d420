package pkg

import "github.com/google/uuid"

// GenerateGameID - generates a unique identifier for a game.
func GenerateGameID() string {
	return uuid.NewString()
}

// GenerateNewSessionID - generates a player id for a fresh websocket session.
func GenerateNewSessionID() string {
	return "p-" + uuid.NewString()
}
