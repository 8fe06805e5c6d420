package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

var ErrInvalidSearchConfig = errors.New("invalid search config")

type SearchConfig struct {
	// Depth counts plies including the root move.
	Depth int `yaml:"depth" env-default:"4"`
	// TopK limits the moves explored below the root. Zero explores all.
	TopK int `yaml:"top-k" env-default:"0"`
	// MaxNodes caps the nodes visited per analysis. Zero means no cap.
	MaxNodes int `yaml:"max-nodes" env-default:"0"`
	Jitter   int `yaml:"jitter" env-default:"0"`
}

func DefaultSearchConfig() SearchConfig {
	return SearchConfig{Depth: 4}
}

func (that SearchConfig) Validate() error {
	switch {
	case that.Depth < 1:
		return fmt.Errorf("%w: depth must be at least 1, got %d", ErrInvalidSearchConfig, that.Depth)
	case that.TopK < 0, that.MaxNodes < 0, that.Jitter < 0:
		return fmt.Errorf("%w: top-k, max-nodes and jitter must not be negative", ErrInvalidSearchConfig)
	}

	return nil
}

type ScoredMove struct {
	Move  entity.Move `json:"move"`
	Score int         `json:"score"`
}

type Stats struct {
	Nodes   int `json:"nodes"`
	Cutoffs int `json:"cutoffs"`
}

type evaluator func(state entity.State, perspective entity.Mark, weights Weights) int

type Searcher struct {
	config   SearchConfig
	weights  Weights
	orderer  *Orderer
	evaluate evaluator
}

func NewSearcher(config SearchConfig, weights Weights, orderer *Orderer) *Searcher {
	return &Searcher{
		config:   config,
		weights:  weights,
		orderer:  orderer,
		evaluate: Evaluate,
	}
}

// walk carries the counters of one search call so a Searcher can be shared.
type walk struct {
	*Searcher

	ai    entity.Mark
	stats Stats
}

// Search runs alpha-beta from state, scoring leaves for ai.
func (that *Searcher) Search(state entity.State, depth int, maximizing bool, alpha, beta int, ai entity.Mark) (int, Stats) {
	w := &walk{Searcher: that, ai: ai}
	score := w.search(state, depth, maximizing, alpha, beta)

	return score, w.stats
}

// Analyze scores every legal root move for the side to move with a full window.
func (that *Searcher) Analyze(state entity.State) ([]ScoredMove, Stats, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return nil, Stats{}, apperror.ErrNoAvailableMoves
	}

	w := &walk{Searcher: that, ai: state.Turn}
	w.stats.Nodes++

	scored := make([]ScoredMove, 0, len(moves))
	for _, move := range that.orderer.Order(state, moves, state.Turn) {
		next, err := state.Apply(move)
		if err != nil {
			return nil, w.stats, fmt.Errorf("failed to apply root move %s: %w", move, err)
		}

		score := w.search(next, that.config.Depth-1, false, math.MinInt, math.MaxInt)
		scored = append(scored, ScoredMove{Move: move, Score: score})
	}

	return scored, w.stats, nil
}

func (that *walk) search(state entity.State, depth int, maximizing bool, alpha, beta int) int {
	that.stats.Nodes++

	if depth <= 0 || state.IsOver() || that.exhausted() {
		return that.evaluate(state, that.ai, that.weights)
	}

	moves := state.LegalMoves()
	if len(moves) == 0 {
		return 0
	}

	moves = that.orderer.Order(state, moves, state.Turn)
	if k := that.config.TopK; k > 0 && len(moves) > k {
		moves = moves[:k]
	}

	if maximizing {
		best := math.MinInt
		for _, move := range moves {
			best = max(best, that.search(state.Play(move), depth-1, false, alpha, beta))
			alpha = max(alpha, best)

			if beta <= alpha {
				that.stats.Cutoffs++
				break
			}
		}

		return best
	}

	best := math.MaxInt
	for _, move := range moves {
		best = min(best, that.search(state.Play(move), depth-1, true, alpha, beta))
		beta = min(beta, best)

		if beta <= alpha {
			that.stats.Cutoffs++
			break
		}
	}

	return best
}

func (that *walk) exhausted() bool {
	return that.config.MaxNodes > 0 && that.stats.Nodes > that.config.MaxNodes
}
