package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.Result) error
	StatsByPlayer(ctx context.Context, playerID string) (*entity.Stats, error)
	History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type resultRepository struct {
	conn *sql.DB
}

func NewResultRepository(conn *sql.DB) ResultRepository {
	return &resultRepository{
		conn: conn,
	}
}

// Save records a result. Saving the same game twice for a player keeps the first record.
func (that *resultRepository) Save(ctx context.Context, result *entity.Result) error {
	query := `INSERT OR IGNORE INTO results
		(game_id, player_id, outcome, player_mark, moves, decided_boards, mistake_rate, duration_ms, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		result.GameID,
		result.PlayerID,
		result.Outcome,
		result.PlayerMark.String(),
		result.Moves,
		result.DecidedBoards,
		result.MistakeRate,
		result.Duration.Milliseconds(),
		result.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("can't save result: %w", err)
	}

	return nil
}

func (that *resultRepository) StatsByPlayer(ctx context.Context, playerID string) (*entity.Stats, error) {
	query := `SELECT outcome, COUNT(*) FROM results WHERE player_id = ? GROUP BY outcome`

	rows, err := that.conn.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("can't query stats: %w", err)
	}
	defer rows.Close()

	stats := &entity.Stats{PlayerID: playerID}
	for rows.Next() {
		var (
			outcome string
			count   int
		)

		if err = rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("can't scan stats: %w", err)
		}

		switch outcome {
		case entity.OutcomeWin:
			stats.Wins = count
		case entity.OutcomeLoss:
			stats.Losses = count
		case entity.OutcomeDraw:
			stats.Draws = count
		case entity.OutcomeAbandoned:
			stats.Abandoned = count
		}

		stats.GamesPlayed += count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read stats: %w", err)
	}

	return stats, nil
}

// History returns a player's most recent results, newest first.
func (that *resultRepository) History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	query := `SELECT game_id, player_id, outcome, player_mark, moves, decided_boards, mistake_rate, duration_ms, finished_at
		FROM results WHERE player_id = ? ORDER BY finished_at DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("can't query history: %w", err)
	}
	defer rows.Close()

	var results []*entity.Result
	for rows.Next() {
		var (
			result     entity.Result
			mark       string
			durationMS int64
		)

		err = rows.Scan(
			&result.GameID,
			&result.PlayerID,
			&result.Outcome,
			&mark,
			&result.Moves,
			&result.DecidedBoards,
			&result.MistakeRate,
			&durationMS,
			&result.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("can't scan result: %w", err)
		}

		if result.PlayerMark, err = entity.ParseMark(mark); err != nil {
			return nil, fmt.Errorf("can't parse result mark: %w", err)
		}

		result.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, &result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read history: %w", err)
	}

	return results, nil
}
