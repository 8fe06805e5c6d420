package usecase

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/stretchr/testify/mock"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

type mockResultRepo struct {
	mock.Mock
}

func (that *mockResultRepo) Save(ctx context.Context, result *entity.Result) error {
	args := that.Called(ctx, result)
	return args.Error(0)
}

func (that *mockResultRepo) StatsByPlayer(ctx context.Context, playerID string) (*entity.Stats, error) {
	args := that.Called(ctx, playerID)
	stats, _ := args.Get(0).(*entity.Stats)
	return stats, args.Error(1)
}

func (that *mockResultRepo) History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	args := that.Called(ctx, playerID, limit)
	history, _ := args.Get(0).([]*entity.Result)
	return history, args.Error(1)
}

// memoryPlayers and memoryGames keep JSON copies, like the redis repositories, so callers never share pointers.
type memoryPlayers struct {
	mu      sync.Mutex
	players map[string][]byte
}

func newMemoryPlayers() *memoryPlayers {
	return &memoryPlayers{players: make(map[string][]byte)}
}

func (that *memoryPlayers) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()
	that.players[player.ID] = data

	return nil
}

func (that *memoryPlayers) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	data, ok := that.players[id]
	that.mu.Unlock()

	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	var player entity.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}

	return &player, nil
}

type memoryGames struct {
	mu    sync.Mutex
	games map[string][]byte
}

func newMemoryGames() *memoryGames {
	return &memoryGames{games: make(map[string][]byte)}
}

func (that *memoryGames) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()
	that.games[game.ID] = data

	return nil
}

func (that *memoryGames) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	data, ok := that.games[id]
	that.mu.Unlock()

	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	var game entity.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

func (that *memoryGames) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	delete(that.games, id)

	return nil
}

type memoryResults struct {
	mu      sync.Mutex
	results []entity.Result
}

func (that *memoryResults) Save(_ context.Context, result *entity.Result) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.results = append(that.results, *result)

	return nil
}

func (that *memoryResults) StatsByPlayer(context.Context, string) (*entity.Stats, error) {
	return &entity.Stats{}, nil
}

func (that *memoryResults) History(context.Context, string, int) ([]*entity.Result, error) {
	return nil, nil
}

func (that *memoryResults) all() []entity.Result {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]entity.Result(nil), that.results...)
}
