package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/engine"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/pkg"
)

const historyLimit = 20

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.Result) error
	StatsByPlayer(ctx context.Context, playerID string) (*entity.Stats, error)
	History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type gameController interface {
	NewGame(id, policy string) (*entity.Game, error)
	Start(game *entity.Game) error
	MakeTurn(game *entity.Game, mark entity.Mark, move entity.Move) error
	Abandon(game *entity.Game)
}

type botService interface {
	MakeTurn(game *entity.Game, mistakeRate float64) (engine.Decision, error)
}

type intner interface {
	IntN(n int) int
}

type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	resultRepo resultRepo

	controller gameController
	bot        botService
	difficulty engine.DifficultyConfig
	rng        intner
	now        func() time.Time

	locks *playerLocks
}

func NewGameManager(
	logger *slog.Logger,
	playerRepo playerRepo,
	gameRepo gameRepo,
	resultRepo resultRepo,
	controller gameController,
	bot botService,
	difficulty engine.DifficultyConfig,
	rng intner,
) *GameManager {
	return &GameManager{
		logger: logger,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		resultRepo: resultRepo,

		controller: controller,
		bot:        bot,
		difficulty: difficulty,
		rng:        rng,
		now:        time.Now,

		locks: newPlayerLocks(),
	}
}

// GetOrCreatePlayer restores a session or opens a new one. Unknown ids are re-created so a
// client keeps its id after the store was flushed.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player, err := that.createPlayer(ctx, pkg.GenerateNewSessionID())
		if err != nil {
			return nil, fmt.Errorf("failed to create new player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		player, err = that.createPlayer(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}

		return player, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// NewGame starts a game against the bot. A game the player is still in counts as abandoned.
func (that *GameManager) NewGame(ctx context.Context, playerID, policy string) (*entity.Game, error) {
	log := that.logger.With("method", "NewGame", "player_id", playerID)

	defer that.locks.Lock(playerID)()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID != "" {
		if err = that.abandonActiveGame(ctx, player); err != nil {
			return nil, err
		}
	}

	game, err := that.controller.NewGame(pkg.GenerateGameID(), policy)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	humanMark, botMark := entity.RandomMarks(that.rng)

	player.Mark = humanMark
	player.GameID = game.ID
	game.Players = []*entity.Player{player, entity.NewBotPlayer(botMark)}

	if err = that.controller.Start(game); err != nil {
		return nil, err
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	log.Info("game started", "game_id", game.ID, "mark", humanMark, "redirect_policy", game.Redirect)

	return game, nil
}

// GetGameByPlayerID returns the game the player is currently in.
func (that *GameManager) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	return that.getGameByID(ctx, player.GameID)
}

// MakeTurn plays the human's move. A finished game is recorded and removed before it is returned.
func (that *GameManager) MakeTurn(ctx context.Context, playerID string, move entity.Move) (*entity.Game, error) {
	defer that.locks.Lock(playerID)()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	if err = that.controller.MakeTurn(game, player.Mark, move); err != nil {
		return game, fmt.Errorf("failed make turn: %w", err)
	}

	if game.IsFinished() {
		if err = that.finishGame(ctx, game, player); err != nil {
			return game, err
		}

		return game, nil
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// MakeBotTurn lets the bot answer in the given game, using the human's current mistake rate.
// The turn is dropped with ErrGameNotFound once the human has left the game or started another one.
func (that *GameManager) MakeBotTurn(ctx context.Context, gameID string) (*entity.Game, error) {
	log := that.logger.With("method", "MakeBotTurn", "game_id", gameID)

	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if !game.IsBotTurn() {
		return game, apperror.ErrNotYourTurn
	}

	human := game.HumanPlayer()
	if human == nil {
		return game, fmt.Errorf("%w: game %s has no human player", apperror.ErrPlayerNotFound, gameID)
	}

	defer that.locks.Lock(human.ID)()

	player, err := that.getPlayerByID(ctx, human.ID)
	if err != nil {
		return nil, err
	}

	if player.GameID != gameID {
		return nil, fmt.Errorf("%w: player %s is no longer in game %s", apperror.ErrGameNotFound, player.ID, gameID)
	}

	// reload, another turn may have landed while waiting for the lock
	game, err = that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if !game.IsBotTurn() {
		return game, apperror.ErrNotYourTurn
	}

	decision, err := that.bot.MakeTurn(game, player.MistakeRate)
	if err != nil {
		return game, fmt.Errorf("failed to make bot turn: %w", err)
	}

	log.Debug("bot moved",
		"move", decision.Move.String(),
		"mistake", decision.Mistake,
		"fallback", decision.Fallback,
		"nodes", decision.Nodes,
	)

	if game.IsFinished() {
		if err = that.finishGame(ctx, game, player); err != nil {
			return game, err
		}

		return game, nil
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// LeaveGame abandons the player's game. Difficulty is left alone.
func (that *GameManager) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	defer that.locks.Lock(playerID)()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	that.controller.Abandon(game)

	if err = that.finishGame(ctx, game, player); err != nil {
		return game, err
	}

	return game, nil
}

func (that *GameManager) GetStats(ctx context.Context, playerID string) (*entity.Stats, error) {
	stats, err := that.resultRepo.StatsByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

func (that *GameManager) GetHistory(ctx context.Context, playerID string) ([]*entity.Result, error) {
	history, err := that.resultRepo.History(ctx, playerID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return history, nil
}

func (that *GameManager) GetMistakeRate(ctx context.Context, playerID string) (float64, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return 0, err
	}

	return player.MistakeRate, nil
}

func (that *GameManager) abandonActiveGame(ctx context.Context, player *entity.Player) error {
	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if errors.Is(err, apperror.ErrGameNotFound) {
		// expired
		player.LeaveGame()
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get active game: %w", err)
	}

	that.controller.Abandon(game)

	return that.finishGame(ctx, game, player)
}

// finishGame records the result, adjusts the player's mistake rate on a decided game and drops the live game.
func (that *GameManager) finishGame(ctx context.Context, game *entity.Game, player *entity.Player) error {
	log := that.logger.With("method", "finishGame", "game_id", game.ID, "player_id", player.ID)

	result := entity.NewResult(game, player, that.now())
	if err := that.resultRepo.Save(ctx, result); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	if game.IsFinished() {
		difficulty := engine.NewDifficulty(that.difficulty, player.MistakeRate)
		player.MistakeRate = difficulty.GameEnded(game.Winner, player.Mark)
	}

	player.LeaveGame()
	if err := that.updatePlayer(ctx, player); err != nil {
		return err
	}

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	log.Info("game ended", "outcome", result.Outcome, "moves", result.Moves, "mistake_rate", player.MistakeRate)

	return nil
}

func (that *GameManager) createPlayer(ctx context.Context, id string) (*entity.Player, error) {
	player := &entity.Player{
		ID:          id,
		MistakeRate: that.difficulty.Initial,
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
