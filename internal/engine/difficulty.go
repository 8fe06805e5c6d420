package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

var ErrInvalidDifficulty = errors.New("invalid difficulty config")

type DifficultyConfig struct {
	Initial float64 `yaml:"initial" env-default:"0.10"`
	Min     float64 `yaml:"min" env-default:"0.02"`
	Max     float64 `yaml:"max" env-default:"0.25"`

	// DecreaseStep applies after a player win, IncreaseStep after an AI win.
	DecreaseStep float64 `yaml:"decrease-step" env-default:"0.02"`
	IncreaseStep float64 `yaml:"increase-step" env-default:"0.03"`

	// CandidatePool is how many runner-up moves a mistake may pick from.
	CandidatePool int `yaml:"candidate-pool" env-default:"2"`
	// SafetyMargin is the largest score gap to the best move a mistake may accept.
	SafetyMargin int `yaml:"safety-margin" env-default:"400"`
}

func DefaultDifficultyConfig() DifficultyConfig {
	return DifficultyConfig{
		Initial:       0.10,
		Min:           0.02,
		Max:           0.25,
		DecreaseStep:  0.02,
		IncreaseStep:  0.03,
		CandidatePool: 2,
		SafetyMargin:  400,
	}
}

func (that DifficultyConfig) Validate() error {
	switch {
	case that.Min < 0 || that.Max > 1 || that.Min > that.Max:
		return fmt.Errorf("%w: bounds [%v, %v] must lie within [0, 1]", ErrInvalidDifficulty, that.Min, that.Max)
	case that.DecreaseStep < 0 || that.IncreaseStep < 0:
		return fmt.Errorf("%w: steps must not be negative", ErrInvalidDifficulty)
	case that.CandidatePool < 1:
		return fmt.Errorf("%w: candidate pool must be at least 1", ErrInvalidDifficulty)
	case that.SafetyMargin < 0:
		return fmt.Errorf("%w: safety margin must not be negative", ErrInvalidDifficulty)
	}

	return nil
}

// Difficulty holds the mistake rate of one human player.
type Difficulty struct {
	config DifficultyConfig
	rate   float64
}

// NewDifficulty starts from rate, clamped to the configured bounds.
func NewDifficulty(config DifficultyConfig, rate float64) *Difficulty {
	return &Difficulty{
		config: config,
		rate:   config.clamp(rate),
	}
}

func (that *Difficulty) Rate() float64 {
	return that.rate
}

// SelectMove returns the best move, or with probability Rate a runner-up
// within the safety margin. The flag reports whether a mistake was made.
func (that *Difficulty) SelectMove(scored []ScoredMove, rng Random) (entity.Move, bool) {
	if len(scored) == 0 {
		return entity.Move{}, false
	}

	ranked := make([]ScoredMove, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	best := ranked[0]
	if len(ranked) == 1 || rng.Float64() >= that.rate {
		return best.Move, false
	}

	candidates := make([]ScoredMove, 0, that.config.CandidatePool)
	for _, sm := range ranked[1:] {
		if len(candidates) == that.config.CandidatePool || best.Score-sm.Score > that.config.SafetyMargin {
			break
		}

		candidates = append(candidates, sm)
	}

	if len(candidates) == 0 {
		return best.Move, false
	}

	return candidates[rng.IntN(len(candidates))].Move, true
}

// Adjust moves the rate after a decisive game and returns the new value.
func (that *Difficulty) Adjust(playerWon bool) float64 {
	if playerWon {
		that.rate = that.config.clamp(that.rate - that.config.DecreaseStep)
	} else {
		that.rate = that.config.clamp(that.rate + that.config.IncreaseStep)
	}

	return that.rate
}

// GameEnded adjusts the rate for a finished game. Draws leave it unchanged.
func (that *Difficulty) GameEnded(winner, human entity.Mark) float64 {
	if !winner.IsPlayer() {
		return that.rate
	}

	return that.Adjust(winner == human)
}

func (that DifficultyConfig) clamp(rate float64) float64 {
	return min(max(rate, that.Min), that.Max)
}
