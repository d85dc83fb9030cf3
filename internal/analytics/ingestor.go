package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/terrascribe/llm-api/internal/store"
	"github.com/terrascribe/llm-api/internal/store/model"
	"go.uber.org/zap"
)

// Ingestor handles the asynchronous persistence of request logs so database
// writes stay off the completion hot path.
type Ingestor interface {
	Log(log *model.RequestLog)
	Start(ctx context.Context)
	Stop()
}

type ingestor struct {
	logger    *zap.Logger
	repo      store.Repository
	logChan   chan *model.RequestLog
	quit      chan struct{}
	stopOnce  sync.Once
	flushTime time.Duration
	batchSize int
}

func NewIngestor(logger *zap.Logger, repo store.Repository) Ingestor {
	return &ingestor{
		logger:    logger,
		repo:      repo,
		logChan:   make(chan *model.RequestLog, 4096),
		quit:      make(chan struct{}),
		flushTime: 5 * time.Second,
		batchSize: 50,
	}
}

func (i *ingestor) Log(log *model.RequestLog) {
	select {
	case i.logChan <- log:
	default:
		i.logger.Warn("usage buffer full, dropping log", zap.String("request_id", log.ID))
	}
}

func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

// Stop signals the worker to drain and exit. The log channel is never
// closed: handlers still finishing a request after a forced shutdown may
// call Log, and a send on a closed channel would panic.
func (i *ingestor) Stop() {
	i.stopOnce.Do(func() { close(i.quit) })
}

func (i *ingestor) worker(ctx context.Context) {
	batch := make([]*model.RequestLog, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		for _, log := range batch {
			if err := i.repo.Requests().Log(context.Background(), log); err != nil {
				i.logger.Error("failed to persist request log",
					zap.String("id", log.ID), zap.Error(err))
			}
		}
		batch = batch[:0]
	}

	drain := func() {
		for {
			select {
			case log := <-i.logChan:
				batch = append(batch, log)
			default:
				flush()
				return
			}
		}
	}

	for {
		select {
		case log := <-i.logChan:
			batch = append(batch, log)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-i.quit:
			drain()
			return
		case <-ctx.Done():
			drain()
			return
		}
	}
}

// Nop discards all logs; used when the store is disabled.
type Nop struct{}

func (Nop) Log(*model.RequestLog)     {}
func (Nop) Start(ctx context.Context) {}
func (Nop) Stop()                     {}
