package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/engine"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

var ErrBotNotFound = errors.New("bot player not found")

type BotService interface {
	MakeTurn(game *entity.Game, mistakeRate float64) (engine.Decision, error)
}

type moveChooser interface {
	ChooseMove(state entity.State, difficulty *engine.Difficulty) (engine.Decision, bool)
}

type turnMaker interface {
	MakeTurn(game *entity.Game, mark entity.Mark, move entity.Move) error
}

type botService struct {
	engine     moveChooser
	controller turnMaker
	difficulty engine.DifficultyConfig
}

func NewBotService(engine moveChooser, controller turnMaker, difficulty engine.DifficultyConfig) BotService {
	return &botService{
		engine:     engine,
		controller: controller,
		difficulty: difficulty,
	}
}

// MakeTurn plays the bot's move at the given mistake rate.
func (that *botService) MakeTurn(game *entity.Game, mistakeRate float64) (engine.Decision, error) {
	bot := game.BotPlayer()
	if bot == nil {
		return engine.Decision{}, ErrBotNotFound
	}

	decision, ok := that.engine.ChooseMove(game.State, engine.NewDifficulty(that.difficulty, mistakeRate))
	if !ok {
		return engine.Decision{}, apperror.ErrNoAvailableMoves
	}

	if err := that.controller.MakeTurn(game, bot.Mark, decision.Move); err != nil {
		return engine.Decision{}, fmt.Errorf("bot failed to make turn: %w", err)
	}

	return decision, nil
}
