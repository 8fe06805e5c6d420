package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/config"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/engine"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/repository"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/repository/storage"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/service"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/tictactoe"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/usecase"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/transport/rest"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/transport/websocket"
	"golang.org/x/sync/errgroup"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err := sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	seed := conf.AI.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	log.Info("AI configured",
		"depth", conf.AI.Depth,
		"top_k", conf.AI.TopK,
		"seed", seed,
		"redirect_policy", conf.AI.RedirectPolicy,
		"weights", conf.AI.Weights.Version,
	)

	rng := engine.NewLockedRandom(seed)

	playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
	gameRepo := repository.NewGameRepository(redisStorage.Connection, conf.GameTTL)
	resultRepo := repository.NewResultRepository(sqliteStorage.Connection)

	gameController, err := tictactoe.NewGameController(conf.AI.RedirectPolicy, rng)
	if err != nil {
		return fmt.Errorf("could not create game controller: %w", err)
	}

	aiEngine := engine.New(logger, conf.AI.SearchConfig, conf.AI.Weights, rng)
	botService := service.NewBotService(aiEngine, gameController, conf.AI.Difficulty)

	gameUseCase := usecase.NewGameManager(
		logger,
		playerRepo,
		gameRepo,
		resultRepo,
		gameController,
		botService,
		conf.AI.Difficulty,
		rng,
	)

	restServer := rest.New(logger, gameUseCase, aiEngine)
	wsServer := websocket.New(logger, gameUseCase, conf.AI.ThinkTime)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := restServer.Start(groupCtx, conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		if err := wsServer.Start(groupCtx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}

		return nil
	})

	if err = group.Wait(); err != nil {
		return err //nolint: wrapcheck // wrapped inside the group
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
