package agent

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"
	config "github.com/mwantia/mystrava/internal/config/server"
	resync "github.com/mwantia/mystrava/internal/sync"
	"github.com/mwantia/mystrava/pkg/db/store"
	"github.com/mwantia/mystrava/pkg/log"
	"github.com/mwantia/mystrava/pkg/strava"
	"github.com/mwantia/mystrava/pkg/view"
	"github.com/robfig/cron/v3"
)

type MyStravaAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	store   *store.SQLiteStore
	client  *strava.Client
	service *resync.Service
	view    *view.Controller

	cron   *cron.Cron
	server *http.Server
}

func NewAgent(cfg *config.BaseServerConfig) *MyStravaAgent {
	return &MyStravaAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("mystrava", cfg.Log),
	}
}

// Setup opens the store and registers every service. It is enough for the
// one-shot commands; Serve adds the scheduler and the HTTP API on top.
func (msa *MyStravaAgent) Setup(ctx context.Context) error {
	msa.mutex.Lock()
	defer msa.mutex.Unlock()

	if msa.view != nil {
		return nil
	}
	return msa.setupServices(ctx)
}

func (msa *MyStravaAgent) Store() *store.SQLiteStore {
	msa.mutex.RLock()
	defer msa.mutex.RUnlock()
	return msa.store
}

func (msa *MyStravaAgent) Service() *resync.Service {
	msa.mutex.RLock()
	defer msa.mutex.RUnlock()
	return msa.service
}

func (msa *MyStravaAgent) Controller() *view.Controller {
	msa.mutex.RLock()
	defer msa.mutex.RUnlock()
	return msa.view
}

func (msa *MyStravaAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	if err := msa.Setup(ctx); err != nil {
		return err
	}

	msa.mutex.Lock()
	if err := msa.startScheduler(ctx); err != nil {
		msa.mutex.Unlock()
		return err
	}
	msa.startServer()
	msa.mutex.Unlock()

	if err := msa.view.Load(ctx); err != nil {
		msa.log.Warn("Unable to load stored activities: %v", err)
	}
	if msa.cfg.Sync.OnStart {
		msa.wait.Add(1)
		go func() {
			defer msa.wait.Done()
			msa.resync(ctx)
		}()
	}

	<-ctx.Done()
	return msa.Shutdown()
}

// Shutdown stops the scheduler and the HTTP API, then cleans up every
// registered service.
func (msa *MyStravaAgent) Shutdown() error {
	timeout, err := time.ParseDuration(msa.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	msa.mutex.Lock()
	defer msa.mutex.Unlock()

	if msa.cron != nil {
		<-msa.cron.Stop().Done()
	}
	if msa.server != nil {
		if err := msa.server.Shutdown(shutdown); err != nil {
			msa.log.Warn("HTTP server shutdown error: %v", err)
		}
	}

	msa.wait.Wait()

	if err := msa.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}
	if msa.store != nil {
		if err := msa.store.Close(); err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
	}
	return nil
}
