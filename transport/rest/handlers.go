package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/engine"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

type playerUseCase interface {
	GetStats(ctx context.Context, playerID string) (*entity.Stats, error)
	GetHistory(ctx context.Context, playerID string) ([]*entity.Result, error)
	GetMistakeRate(ctx context.Context, playerID string) (float64, error)
}

type analyzer interface {
	Analyze(state entity.State) (*engine.Analysis, error)
}

type Handlers interface {
	Stats(ctx echo.Context) error
	History(ctx echo.Context) error
	Difficulty(ctx echo.Context) error
	Analyze(ctx echo.Context) error
}

type handlers struct {
	logger   *slog.Logger
	players  playerUseCase
	analyzer analyzer
}

func NewHandlers(logger *slog.Logger, players playerUseCase, analyzer analyzer) Handlers {
	return &handlers{
		logger:   logger,
		players:  players,
		analyzer: analyzer,
	}
}

type difficultyResponse struct {
	PlayerID    string  `json:"player_id"`
	MistakeRate float64 `json:"mistake_rate"`
}

type analyzeRequest struct {
	State *entity.State `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *handlers) Stats(ctx echo.Context) error {
	stats, err := that.players.GetStats(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return that.fail(ctx, "Stats", err)
	}

	return ctx.JSON(http.StatusOK, stats)
}

func (that *handlers) History(ctx echo.Context) error {
	history, err := that.players.GetHistory(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return that.fail(ctx, "History", err)
	}

	if history == nil {
		history = []*entity.Result{}
	}

	return ctx.JSON(http.StatusOK, history)
}

func (that *handlers) Difficulty(ctx echo.Context) error {
	playerID := ctx.Param("id")

	rate, err := that.players.GetMistakeRate(ctx.Request().Context(), playerID)
	if err != nil {
		return that.fail(ctx, "Difficulty", err)
	}

	return ctx.JSON(http.StatusOK, difficultyResponse{
		PlayerID:    playerID,
		MistakeRate: rate,
	})
}

// Analyze scores a position for the side to move.
func (that *handlers) Analyze(ctx echo.Context) error {
	var request analyzeRequest
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if request.State == nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "state is required"})
	}

	if err := request.State.CheckConsistency(); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	analysis, err := that.analyzer.Analyze(*request.State)
	if err != nil {
		return that.fail(ctx, "Analyze", err)
	}

	return ctx.JSON(http.StatusOK, analysis)
}

func (that *handlers) fail(ctx echo.Context, method string, err error) error {
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		return ctx.JSON(http.StatusNotFound, errorResponse{Error: "player not found"})
	}

	that.logger.Error("request failed", "method", method, "error", err)

	return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
}
