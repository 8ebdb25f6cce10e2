package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/providers/llm"
	"github.com/sandevgo/carebot/internal/providers/rag"
	"github.com/sandevgo/carebot/internal/service/geo"
	"github.com/sandevgo/carebot/internal/service/intent"
	"github.com/sandevgo/carebot/internal/service/responder"
	"github.com/sandevgo/carebot/internal/storage/sqlite"
	"github.com/sandevgo/carebot/internal/transport/telegram"
	"github.com/sandevgo/carebot/internal/transport/web"
	"github.com/sandevgo/carebot/pkg/log"
	"github.com/sandevgo/carebot/pkg/srv"
	"github.com/sandevgo/carebot/pkg/workerpool"
)

// NewServices wires the whole application: storage, the Mistral
// clients, the retrieval stack, the response pipeline, and the
// configured transports.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	mistralCfg := config.NewMistralConfig(ctx)
	serverCfg := config.NewServerConfig(ctx)
	mapsCfg := config.NewMapsConfig(ctx)

	// 2. Pipeline + collaborators
	pipeline, cleanups := newPipeline(ctx, appCfg, mistralCfg)

	// 3. Geo
	geocoder := geo.NewGeocoder(mapsCfg)

	// 4. Transports. Registered ahead of the cleanups: shutdown walks
	// registration order, so the listeners stop accepting requests
	// before the pool drains and the database closes.
	handlers := web.NewHandlers(pipeline, geocoder, mapsCfg.ProximityThresholdMeters)
	services = append(services, web.NewServer(ctx, serverCfg, handlers))

	if appCfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, pipeline)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	services = append(services, cleanups...)
	return services
}

// newPipeline builds the responder and returns it together with the
// cleanup services for its owned resources (database, worker pool).
func newPipeline(ctx context.Context, appCfg *config.AppConfig, mistralCfg *config.MistralConfig) (*responder.Responder, []srv.Service) {
	logger := log.FromCtx(ctx)

	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	pool := workerpool.New(appCfg.RecorderWorkers, appCfg.RecorderQueue)

	recorder, err := responder.NewRecorder(
		sqlite.NewHistoryRepo(db),
		sqlite.NewErrorRepo(db),
		pool,
		appCfg.Timezone,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize recorder")
	}

	retriever := rag.NewRetriever(
		llm.NewMistralEmbedder(mistralCfg),
		sqlite.NewPassageRepo(db),
	)

	pipeline, err := responder.NewResponder(
		intent.NewDefaultMatcher(),
		retriever,
		llm.NewMistral(mistralCfg),
		recorder,
		responder.Options{
			TopK:             appCfg.TopK,
			RetrievalTimeout: appCfg.RetrievalTimeout,
			ModelTimeout:     appCfg.ModelTimeout,
		},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize responder")
	}

	// Drain pending history writes before closing the database. A
	// fresh context because shutdown runs after the signal context is
	// already canceled.
	cleanups := []srv.Service{
		srv.NewCleanup(func() error {
			drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return pool.Shutdown(drainCtx)
		}),
		srv.NewCleanup(db.Close),
	}
	return pipeline, cleanups
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
