package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/uinjkt-dev/campus-assistant/internal/config"
	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
	"github.com/uinjkt-dev/campus-assistant/internal/core/ports"
	"github.com/uinjkt-dev/campus-assistant/internal/core/usecase"
	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/corpus"
	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/embedding/hfendpoint"
	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/llm/groq"
	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/queue/nats"
	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/repository/postgres"
	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/resilience"
	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/session"
	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/storage/localfs"
	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/vector/pinecone"
)

// App wires the configured infrastructure into the use cases shared by
// the api and worker binaries.
type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Sessions ports.SessionStore
	Tickets  ports.TicketStore

	ChatUC   ports.ChatService
	EvalUC   ports.AnswerEvaluator
	IngestUC ports.CorpusIngestor
	SyncUC   ports.CorpusSyncProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	uploadLog := postgres.NewUploadLogRepository(db)
	tickets := postgres.NewTicketRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	exec := resilience.NewExecutor(resilience.DefaultPolicy())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: exec})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	sessions, err := session.NewStore(cfg.SessionPath, time.Duration(cfg.SessionTimeoutSeconds)*time.Second)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init session store: %w", err)
	}

	lex, err := config.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	chatModel := groq.New(cfg.GroqBaseURL, cfg.GroqAPIKey, exec)
	embedder := hfendpoint.New(cfg.HFEndpointURL, cfg.HFAPIKey, exec)
	index := pinecone.NewStore(pinecone.NewClient(cfg.PineconeHost, cfg.PineconeAPIKey, cfg.PineconeNamespace), embedder)

	models := domain.ModelSet{
		Planner:  cfg.PlannerModel,
		Primary:  cfg.PrimaryModel,
		Fallback: cfg.FallbackModel,
		Judge:    cfg.JudgeModel,
	}

	chatUC := usecase.NewChatUseCase(chatModel, index, models, lex).
		WithGenerationTimeout(time.Duration(cfg.GenTimeoutSeconds) * time.Second)
	evalUC := usecase.NewEvaluateUseCase(chatModel, cfg.JudgeModel)
	ingestUC := usecase.NewCorpusIngestUseCase(uploadLog, storage, queue)
	syncUC := usecase.NewCorpusSyncUseCase(uploadLog, storage, corpus.NewExtractor(), index)

	return &App{
		Config: cfg,

		Queue:    queue,
		Sessions: sessions,
		Tickets:  tickets,

		ChatUC:   chatUC,
		EvalUC:   evalUC,
		IngestUC: ingestUC,
		SyncUC:   syncUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
