package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/tictactoe"
)

func decodePayload(msg *Message) (*Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.uGame.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new player")
	}

	that.register(player.ID, conn)

	payloadResp := Payload{Player: player}

	var restored *entity.Game
	if player.GameID != "" {
		restored, err = that.uGame.GetGameByPlayerID(ctx, player.ID)
		if err != nil {
			log.Warn("failed to restore game", "gameID", player.GameID, "error", err)
			restored = nil
		} else {
			payloadResp.Game = maskGameDetails(restored)
		}
	}

	if err = that.sendMessage(conn, msg.Action, payloadResp); err != nil {
		return err
	}

	// the bot's pending move may have been lost with a restart or a failed turn
	if restored != nil && restored.IsBotTurn() {
		that.scheduleBotTurn(ctx, restored.ID)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleNewGame")

	payloadReq, err := that.requirePlayer(msg, conn)
	if payloadReq == nil {
		return err
	}

	game, err := that.uGame.NewGame(ctx, payloadReq.Player.ID, payloadReq.RedirectPolicy)
	if errors.Is(err, tictactoe.ErrUnknownPolicy) {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	if err != nil {
		log.Error("failed to create game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new game")
	}

	log = log.With("gameID", game.ID)

	that.broadcast(msg.Action, game)

	if game.IsBotTurn() {
		that.scheduleBotTurn(ctx, game.ID)
	}

	log.Info("game created")

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameTurn")

	payloadReq, err := that.requirePlayer(msg, conn)
	if payloadReq == nil {
		return err
	}

	if payloadReq.Move == nil {
		return that.sendErrorResponse(conn, msg.Action, "Move is required")
	}

	log = log.With("playerID", payloadReq.Player.ID)

	game, err := that.uGame.MakeTurn(ctx, payloadReq.Player.ID, *payloadReq.Move)
	if isRejectedMove(err) {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	if err != nil {
		log.Error("failed to make turn", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to make turn")
	}

	that.broadcast(msg.Action, game)

	if game.IsBotTurn() {
		that.scheduleBotTurn(ctx, game.ID)
	}

	log.Info("Player made a turn", "gameID", game.ID, "move", payloadReq.Move.String())

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameLeave")

	payloadReq, err := that.requirePlayer(msg, conn)
	if payloadReq == nil {
		return err
	}

	game, err := that.uGame.LeaveGame(ctx, payloadReq.Player.ID)
	if errors.Is(err, apperror.ErrNoActiveGames) {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	if err != nil {
		log.Error("failed to leave game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to leave game")
	}

	that.broadcast(msg.Action, game)

	log.Info("Player leaving", "playerID", payloadReq.Player.ID, "gameID", game.ID)

	return nil
}

// scheduleBotTurn plays the bot's move after the think time and pushes the result.
func (that *Server) scheduleBotTurn(ctx context.Context, gameID string) {
	log := that.logger.With("method", "scheduleBotTurn", "gameID", gameID)

	go func() {
		timer := time.NewTimer(that.thinkTime)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		game, err := that.uGame.MakeBotTurn(ctx, gameID)
		if errors.Is(err, apperror.ErrGameNotFound) || errors.Is(err, apperror.ErrNotYourTurn) {
			// the player left or the turn was already played
			log.Debug("bot turn skipped", "reason", err)
			return
		}

		if err != nil {
			log.Error("failed to make bot turn", "error", err)
			return
		}

		that.broadcast(actionGameTurn, game)
	}()
}

func (that *Server) requirePlayer(msg *Message, conn *connection) (*Payload, error) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payloadReq.Player == nil || payloadReq.Player.ID == "" {
		return nil, that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	that.register(payloadReq.Player.ID, conn)

	return payloadReq, nil
}

// broadcast sends the game to every human in it.
func (that *Server) broadcast(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	players := game.Players
	masked := maskGameDetails(game)

	for _, player := range players {
		if player.IsBot() {
			continue
		}

		conn, ok := that.connectionOf(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		if err := that.sendMessage(conn, action, Payload{Player: player, Game: masked}); err != nil {
			log.Error("failed to send game update", "error", err)
		}
	}
}

func isRejectedMove(err error) bool {
	for _, target := range []error{
		apperror.ErrNotYourTurn,
		apperror.ErrCellOccupied,
		apperror.ErrBoardDecided,
		apperror.ErrWrongBoard,
		apperror.ErrGameFinished,
		apperror.ErrGameIsNotStarted,
		apperror.ErrNoActiveGames,
		entity.ErrInvalidBoard,
		entity.ErrInvalidCell,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// maskGameDetails hides the player list from the game payload.
func maskGameDetails(game *entity.Game) *entity.Game {
	masked := *game
	masked.Players = nil
	masked.Type = ""
	return &masked
}

func (that *Server) sendMessage(conn *connection, action string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = conn.writeJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(conn *connection, action, errorMsg string) error {
	if err := that.sendMessage(conn, action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
