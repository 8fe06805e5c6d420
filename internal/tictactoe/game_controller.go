package tictactoe

import (
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

var ErrUnknownPolicy = errors.New("unknown redirect policy")

// GameController owns every status change of a game:
// waiting -> ongoing -> finished, or abandoned from any live status.
type GameController struct {
	policies      map[string]RedirectPolicy
	defaultPolicy string
	now           func() time.Time
}

func NewGameController(defaultPolicy string, rng intner) (*GameController, error) {
	controller := &GameController{
		policies: map[string]RedirectPolicy{
			PolicyFreeChoice:     FreeChoice{},
			PolicyRandomRedirect: NewRandomRedirect(rng),
		},
		defaultPolicy: defaultPolicy,
		now:           time.Now,
	}

	if _, err := controller.Policy(defaultPolicy); err != nil {
		return nil, err
	}

	return controller, nil
}

// Policy resolves a policy name. An empty name selects the default.
func (that *GameController) Policy(name string) (RedirectPolicy, error) {
	if name == "" {
		name = that.defaultPolicy
	}

	policy, ok := that.policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}

	return policy, nil
}

// NewGame creates a waiting game with a resolved redirect policy.
func (that *GameController) NewGame(id, policy string) (*entity.Game, error) {
	if policy == "" {
		policy = that.defaultPolicy
	}

	if _, err := that.Policy(policy); err != nil {
		return nil, err
	}

	return entity.NewGame(id, policy), nil
}

func (that *GameController) Start(game *entity.Game) error {
	if err := game.Start(that.now()); err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	return nil
}

// MakeTurn applies a move and then the game's redirect policy.
func (that *GameController) MakeTurn(game *entity.Game, mark entity.Mark, move entity.Move) error {
	policy, err := that.Policy(game.Redirect)
	if err != nil {
		return err
	}

	if err = game.MakeTurn(mark, move); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	if game.IsOngoing() {
		game.State = policy.Redirect(game.State)
	}

	return nil
}

// Abandon ends a live game without a winner.
func (that *GameController) Abandon(game *entity.Game) {
	if game.IsFinished() {
		return
	}

	game.Status = entity.StatusAbandoned
}
