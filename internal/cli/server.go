package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/viethoang1520/quiz-competition/internal/app"
	"github.com/viethoang1520/quiz-competition/internal/config"
	"github.com/viethoang1520/quiz-competition/internal/domain"
	"github.com/viethoang1520/quiz-competition/internal/infra/memory"
	pgloader "github.com/viethoang1520/quiz-competition/internal/infra/postgres"
	redisinfra "github.com/viethoang1520/quiz-competition/internal/infra/redis"
	"github.com/viethoang1520/quiz-competition/internal/logger"
	transport "github.com/viethoang1520/quiz-competition/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the competition server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.SetLoader = memory.NewStaticSetLoader(sampleQuestionSets())
	if pool != nil {
		loader = pgloader.NewSetLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Game.BankTTL, 10*time.Minute)
	var bank app.QuestionBank
	if redisClient != nil {
		bank = redisinfra.NewQuestionBank(redisClient, loader, bankTTL)
	} else {
		bank = memory.NewQuestionBank(loader, bankTTL)
	}

	var store app.RoomStore
	if redisClient != nil {
		store = redisinfra.NewRoomStore(redisClient, redisTTL)
	} else {
		store = memory.NewRoomStore()
	}

	setID := cfg.Game.QuestionSet
	if setID == "" {
		setID = "sample"
	}
	sessionCfg := app.SessionConfig{
		WarmupDurationSec:    cfg.Game.WarmupSeconds,
		QualificationAdvance: cfg.Game.QualificationAdvance,
		WarmupAdvance:        cfg.Game.WarmupAdvance,
	}
	registry := app.NewRegistry(store, bank, setID, sessionCfg, cfg.Game.RoomCodeLength, log)
	wsHandler := transport.NewWSHandler(registry, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting competition server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestionSets is the built-in demo set used when no Postgres backend is
// configured. A real deployment seeds question_sets and points game.questionSet
// at a row id.
func sampleQuestionSets() map[string]domain.QuestionSet {
	correct := func(i int) *int { return &i }
	return map[string]domain.QuestionSet{
		"sample": {
			ID: "sample",
			Qualification: []domain.Question{
				{ID: "q1", Prompt: "What is 7 x 8?", Options: []string{"54", "56", "58", "64"}, CorrectIndex: correct(1), TimeLimitSec: 40},
				{ID: "q2", Prompt: "Which planet is closest to the sun?", Options: []string{"Venus", "Mars", "Mercury", "Earth"}, CorrectIndex: correct(2), TimeLimitSec: 45},
				{ID: "q3", Prompt: "What is the capital of Japan?", Options: []string{"Osaka", "Kyoto", "Tokyo", "Nagoya"}, CorrectIndex: correct(2), TimeLimitSec: 40},
				{ID: "q4", Prompt: "How many continents are there?", Options: []string{"5", "6", "7", "8"}, CorrectIndex: correct(2), TimeLimitSec: 45},
				{ID: "q5", Prompt: "What gas do plants absorb?", Options: []string{"Oxygen", "Nitrogen", "Hydrogen", "Carbon dioxide"}, CorrectIndex: correct(3), TimeLimitSec: 45},
			},
			Warmup: []domain.Question{
				{ID: "w1", Prompt: "What is the square root of 144?", Options: []string{"10", "11", "12", "14"}, CorrectIndex: correct(2), TimeLimitSec: 10},
				{ID: "w2", Prompt: "Which ocean is the largest?", Options: []string{"Atlantic", "Indian", "Arctic", "Pacific"}, CorrectIndex: correct(3), TimeLimitSec: 10},
				{ID: "w3", Prompt: "Who painted the Mona Lisa?", Options: []string{"Van Gogh", "Da Vinci", "Picasso", "Monet"}, CorrectIndex: correct(1), TimeLimitSec: 10},
			},
			Buzzer: []domain.Question{
				{ID: "b1", Prompt: "Name the longest river in the world.", Options: []string{"Amazon", "Nile", "Yangtze", "Mississippi"}, CorrectIndex: correct(1), TimeLimitSec: 60},
				{ID: "b2", Prompt: "In what year did World War II end?", Options: []string{"1943", "1944", "1945", "1946"}, CorrectIndex: correct(2), TimeLimitSec: 60},
			},
		},
	}
}
