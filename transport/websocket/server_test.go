package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGames plays a single scripted game in which the bot holds X.
// With restored set, the player is already in that game when connecting.
type fakeGames struct {
	restored bool
	botTurns atomic.Int32
}

func botFirstGame() *entity.Game {
	game := entity.NewGame("game-1", "free-choice")
	_ = game.Start(time.Now())
	game.Players = []*entity.Player{
		{ID: "p-1", Mark: entity.O, GameID: "game-1"},
		entity.NewBotPlayer(entity.X),
	}

	return game
}

func (that *fakeGames) GetOrCreatePlayer(_ context.Context, id string) (*entity.Player, error) {
	if id == "" {
		id = "p-1"
	}

	if that.restored {
		return &entity.Player{ID: id, Mark: entity.O, GameID: "game-1", MistakeRate: 0.1}, nil
	}

	return &entity.Player{ID: id, MistakeRate: 0.1}, nil
}

func (that *fakeGames) GetGameByPlayerID(context.Context, string) (*entity.Game, error) {
	if that.restored {
		return botFirstGame(), nil
	}

	return nil, apperror.ErrNoActiveGames
}

func (that *fakeGames) NewGame(context.Context, string, string) (*entity.Game, error) {
	return botFirstGame(), nil
}

func (that *fakeGames) MakeTurn(context.Context, string, entity.Move) (*entity.Game, error) {
	return nil, apperror.ErrNotYourTurn
}

func (that *fakeGames) MakeBotTurn(context.Context, string) (*entity.Game, error) {
	that.botTurns.Add(1)

	game := botFirstGame()
	if err := game.MakeTurn(entity.X, entity.Move{Board: 4, Cell: 4}); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *fakeGames) LeaveGame(context.Context, string) (*entity.Game, error) {
	return nil, apperror.ErrNoActiveGames
}

func dial(t *testing.T, games *fakeGames) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := httptest.NewServer(New(logger, games, 0).Handler(ctx))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action, payload string) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: json.RawMessage(payload)}))
}

func receive(t *testing.T, conn *websocket.Conn) (string, Payload) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var message Message
	require.NoError(t, conn.ReadJSON(&message))

	var payload Payload
	require.NoError(t, json.Unmarshal(message.Payload, &payload))

	return message.Action, payload
}

func TestServer_Connect(t *testing.T) {
	// Given: a fresh client
	conn := dial(t, &fakeGames{})

	// When: connecting without an id
	send(t, conn, actionConnect, `{}`)

	// Then: a session id is handed out
	action, payload := receive(t, conn)
	assert.Equal(t, actionConnect, action)
	require.NotNil(t, payload.Player)
	assert.Equal(t, "p-1", payload.Player.ID)
	assert.Nil(t, payload.Game)
}

func TestServer_NewGameWithBotFirst(t *testing.T) {
	// Given: a connected client
	games := &fakeGames{}
	conn := dial(t, games)
	send(t, conn, actionConnect, `{"player":{"id":"p-1"}}`)
	_, _ = receive(t, conn)

	// When: starting a game where the bot holds X
	send(t, conn, actionGameNew, `{"player":{"id":"p-1"}}`)

	// Then: the new game arrives first
	action, payload := receive(t, conn)
	assert.Equal(t, actionGameNew, action)
	require.NotNil(t, payload.Game)
	assert.Equal(t, entity.O, payload.Player.Mark)
	assert.Empty(t, payload.Game.Players)

	// And: the bot's opening move is pushed without being asked
	action, payload = receive(t, conn)
	assert.Equal(t, actionGameTurn, action)
	require.NotNil(t, payload.Game)
	assert.Equal(t, 1, payload.Game.MoveCount)
	assert.Equal(t, entity.X, payload.Game.State.Boards[4][4])
	assert.Equal(t, int32(1), games.botTurns.Load())
}

func TestServer_ConnectResumesPendingBotTurn(t *testing.T) {
	// Given: a player whose stored game waits on the bot
	games := &fakeGames{restored: true}
	conn := dial(t, games)

	// When: reconnecting
	send(t, conn, actionConnect, `{"player":{"id":"p-1"}}`)

	// Then: the game is restored as it was
	action, payload := receive(t, conn)
	assert.Equal(t, actionConnect, action)
	require.NotNil(t, payload.Game)
	assert.Equal(t, 0, payload.Game.MoveCount)

	// And: the bot's move follows
	action, payload = receive(t, conn)
	assert.Equal(t, actionGameTurn, action)
	require.NotNil(t, payload.Game)
	assert.Equal(t, 1, payload.Game.MoveCount)
	assert.Equal(t, int32(1), games.botTurns.Load())
}

func TestServer_Errors(t *testing.T) {
	t.Run("Unknown action", func(t *testing.T) {
		conn := dial(t, &fakeGames{})

		send(t, conn, "game:teleport", `{}`)

		action, payload := receive(t, conn)
		assert.Equal(t, "game:teleport", action)
		assert.Equal(t, "unknown action", payload.Error)
	})

	t.Run("Turn without a move", func(t *testing.T) {
		conn := dial(t, &fakeGames{})

		send(t, conn, actionGameTurn, `{"player":{"id":"p-1"}}`)

		_, payload := receive(t, conn)
		assert.Equal(t, "Move is required", payload.Error)
	})

	t.Run("Rejected move is reported to the player", func(t *testing.T) {
		conn := dial(t, &fakeGames{})

		send(t, conn, actionGameTurn, `{"player":{"id":"p-1"},"move":{"board":4,"cell":4}}`)

		_, payload := receive(t, conn)
		assert.Equal(t, apperror.ErrNotYourTurn.Error(), payload.Error)
	})

	t.Run("Leaving without a game", func(t *testing.T) {
		conn := dial(t, &fakeGames{})

		send(t, conn, actionGameLeave, `{"player":{"id":"p-1"}}`)

		_, payload := receive(t, conn)
		assert.Equal(t, apperror.ErrNoActiveGames.Error(), payload.Error)
	})

	t.Run("Player is required", func(t *testing.T) {
		conn := dial(t, &fakeGames{})

		send(t, conn, actionGameNew, `{}`)

		_, payload := receive(t, conn)
		assert.Equal(t, "Player is required", payload.Error)
	})
}
