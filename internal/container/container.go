// Package container wires application dependencies with ordered
// initialization and reverse-order teardown.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/talentops/hireflow/internal/application/port"
	"github.com/talentops/hireflow/internal/application/service"
	"github.com/talentops/hireflow/internal/config"
	"github.com/talentops/hireflow/internal/document"
	"github.com/talentops/hireflow/internal/infrastructure/persistence/repository"
	"github.com/talentops/hireflow/internal/infrastructure/persistence/sqlite"
	"github.com/talentops/hireflow/internal/infrastructure/worker"
	httpiface "github.com/talentops/hireflow/internal/interfaces/http"
	"github.com/talentops/hireflow/pkg/database"
)

// Container manages all application dependencies and lifecycle.
type Container struct {
	config *config.Config
	logger *zap.Logger

	sqlDB *sql.DB
	db    *sqlite.DB

	recordRepo   port.RecordRepository
	approverRepo port.ApproverRepository
	historyRepo  port.HistoryRepository

	records  service.RecordService
	sessions service.SessionService

	renderer     port.LetterRenderer
	letterWorker *worker.LetterWorker
	workers      *worker.Manager

	server *httpiface.Server

	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// New creates a container. Call Start to initialize components.
func New(cfg *config.Config, logger *zap.Logger) *Container {
	return &Container{config: cfg, logger: logger}
}

// Start initializes components in dependency order: database and
// repositories, services, document renderer, workers, HTTP server.
func (c *Container) Start(ctx context.Context) error {
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}
	c.ctx, c.cancel = context.WithCancel(ctx)

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	c.initServices()
	if err := c.initWorkers(); err != nil {
		return fmt.Errorf("init workers: %w", err)
	}
	c.initServer()

	c.ready.Store(true)
	c.logger.Info("Container started")
	return nil
}

// Close shuts down components in reverse order of initialization.
func (c *Container) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.ready.Store(false)

	if c.cancel != nil {
		c.cancel()
	}

	var firstErr error
	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.sqlDB != nil {
		if err := c.sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	c.logger.Info("Container closed")
	return firstErr
}

// Ready returns true when all components are initialized
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Server returns the HTTP server
func (c *Container) Server() *httpiface.Server {
	return c.server
}

// Records returns the record service
func (c *Container) Records() service.RecordService {
	return c.records
}

func (c *Container) initDatabase() error {
	sqlDB, err := database.Open(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return err
	}
	c.sqlDB = sqlDB

	migrator := database.NewMigrator(sqlDB, c.config.Database.MigrationsDir, c.logger)
	if err := migrator.Run(); err != nil {
		return err
	}

	c.db = sqlite.NewDB(sqlDB, c.logger)
	c.recordRepo = repository.NewRecordRepository(c.db, c.logger)
	c.approverRepo = repository.NewApproverRepository(c.db, c.logger)
	c.historyRepo = repository.NewHistoryRepository(c.db, c.logger)
	return nil
}

func (c *Container) initServices() {
	serviceLogger := &zapLoggerAdapter{logger: c.logger}
	c.records = service.NewRecordService(
		c.recordRepo, c.approverRepo, c.historyRepo, c.db, serviceLogger)
	c.sessions = service.NewSessionService(c.records, serviceLogger)
}

func (c *Container) initWorkers() error {
	renderer, err := document.NewOfferLetterRenderer(
		c.config.Documents.OutputDir, c.config.Documents.CompanyName, c.logger)
	if err != nil {
		return err
	}
	c.renderer = renderer

	c.letterWorker = worker.NewLetterWorker(worker.LetterWorkerConfig{
		Concurrency:   c.config.Worker.Concurrency,
		QueueSize:     c.config.Worker.QueueSize,
		RenderTimeout: c.config.Worker.RenderTimeout,
	}, c.records, c.renderer, c.logger)

	sweeper := worker.NewExpiryScheduler(c.config.Sweeper.Schedule, c.records, c.logger)

	c.workers = worker.NewManager(c.logger)
	c.workers.Register(c.letterWorker)
	c.workers.Register(sweeper)
	return c.workers.StartAll(c.ctx)
}

func (c *Container) initServer() {
	c.server = httpiface.NewServer(httpiface.ServerConfig{
		Host:         c.config.Server.Host,
		Port:         c.config.Server.Port,
		ReadTimeout:  c.config.Server.ReadTimeout,
		WriteTimeout: c.config.Server.WriteTimeout,
	}, c.records, c.sessions, c.letterWorker, &zapLoggerAdapter{logger: c.logger})
}

// zapLoggerAdapter adapts zap.Logger to the service and http Logger
// interfaces.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
