package engine

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

type Engine struct {
	logger   *slog.Logger
	weights  Weights
	searcher *Searcher
	rng      Random
}

func New(logger *slog.Logger, search SearchConfig, weights Weights, rng Random) *Engine {
	return &Engine{
		logger:   logger.With("component", "engine", "weights", weights.Version),
		weights:  weights,
		searcher: NewSearcher(search, weights, NewOrderer(weights, search.Jitter, rng)),
		rng:      rng,
	}
}

type Decision struct {
	Move        entity.Move  `json:"move"`
	Scores      []ScoredMove `json:"scores,omitempty"`
	MistakeRate float64      `json:"mistake_rate"`
	Mistake     bool         `json:"mistake"`
	Fallback    bool         `json:"fallback"`
	Nodes       int          `json:"nodes"`
}

// ChooseMove picks the move for the side to move in state. It reports false
// only when no legal move exists. Failures inside the search fall back to a
// uniformly random legal move.
func (that *Engine) ChooseMove(state entity.State, difficulty *Difficulty) (decision Decision, ok bool) {
	log := that.logger.With("method", "ChooseMove")

	moves := state.LegalMoves()
	if len(moves) == 0 {
		return Decision{}, false
	}

	defer func() {
		if r := recover(); r != nil {
			log.Warn("search panicked, playing a random move", "panic", r)
			decision, ok = that.fallback(moves, difficulty), true
		}
	}()

	scored, stats, err := that.searcher.Analyze(state)
	if err != nil {
		log.Warn("search failed, playing a random move", "error", err)
		return that.fallback(moves, difficulty), true
	}

	move, mistake := difficulty.SelectMove(scored, that.rng)

	log.Debug("move chosen", "move", move.String(), "mistake", mistake, "nodes", stats.Nodes, "cutoffs", stats.Cutoffs)

	return Decision{
		Move:        move,
		Scores:      scored,
		MistakeRate: difficulty.Rate(),
		Mistake:     mistake,
		Nodes:       stats.Nodes,
	}, true
}

func (that *Engine) fallback(moves []entity.Move, difficulty *Difficulty) Decision {
	decision := Decision{
		Move:     moves[that.rng.IntN(len(moves))],
		Fallback: true,
	}

	if difficulty != nil {
		decision.MistakeRate = difficulty.Rate()
	}

	return decision
}

type Analysis struct {
	Evaluation int          `json:"evaluation"`
	Scores     []ScoredMove `json:"scores"`
	Stats      Stats        `json:"stats"`
}

// Analyze evaluates state for the side to move and scores every root move.
func (that *Engine) Analyze(state entity.State) (*Analysis, error) {
	analysis := &Analysis{
		Evaluation: Evaluate(state, state.Turn, that.weights),
	}

	if state.IsOver() {
		return analysis, nil
	}

	scored, stats, err := that.searcher.Analyze(state)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze state: %w", err)
	}

	analysis.Scores = scored
	analysis.Stats = stats

	return analysis, nil
}
