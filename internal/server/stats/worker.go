// Package stats runs periodic cross-tenant reporting in the background.
package stats

import (
	"context"
	"time"

	"github.com/zhenzou/executors"
	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/authz"
	"github.com/looplj/tenanthub/internal/log"
	"github.com/looplj/tenanthub/internal/pkg/xcontext"
	"github.com/looplj/tenanthub/internal/server/biz"
)

type Config struct {
	Enabled bool   `conf:"enabled" yaml:"enabled" json:"enabled"`
	CRON    string `conf:"cron" yaml:"cron" json:"cron"`
}

// Worker periodically collects per-organization record counts and logs
// them. The collection iterates every tenant, so it runs under a system
// principal rather than a request scope.
type Worker struct {
	ScopingService *biz.ScopingService
	Executor       executors.ScheduledExecutor
	Config         Config
	CancelFunc     context.CancelFunc
}

type Params struct {
	fx.In

	Config         Config
	ScopingService *biz.ScopingService
}

func NewWorker(params Params) *Worker {
	return &Worker{
		ScopingService: params.ScopingService,
		Executor:       executors.NewPoolScheduleExecutor(executors.WithMaxConcurrent(1)),
		Config:         params.Config,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	if !w.Config.Enabled {
		log.Debug(ctx, "stats worker disabled")
		return nil
	}

	cancelFunc, err := w.Executor.ScheduleAtCronRate(
		executors.RunnableFunc(w.collectWithSystemContext),
		executors.CRONRule{Expr: w.Config.CRON},
	)
	if err != nil {
		return err
	}

	w.CancelFunc = cancelFunc

	log.Info(ctx, "stats worker started", log.String("cron", w.Config.CRON))

	return nil
}

func (w *Worker) Stop(ctx context.Context) error {
	if w.CancelFunc != nil {
		w.CancelFunc()
	}

	return w.Executor.Shutdown(ctx)
}

func (w *Worker) collectWithSystemContext(ctx context.Context) {
	// A collection sweep must not be cancelled by the scheduler shutting
	// down mid-run, but it must not run unbounded either.
	ctx, cancel := xcontext.DetachWithTimeout(ctx, time.Minute)
	defer cancel()

	w.collect(authz.NewSystemContext(ctx))
}

func (w *Worker) collect(ctx context.Context) {
	perTenant, err := w.ScopingService.CollectTenantStats(ctx)
	if err != nil {
		log.Error(ctx, "failed to collect tenant stats", log.Cause(err))
		return
	}

	for _, stat := range perTenant {
		log.Info(ctx, "tenant stats",
			log.Int64("organization_id", stat.OrganizationID),
			log.String("slug", stat.Slug),
			log.Int("memberships", stat.Memberships),
			log.Int("projects", stat.Projects),
		)
	}

	totals, err := w.ScopingService.CollectTotals(ctx)
	if err != nil {
		log.Error(ctx, "failed to collect totals", log.Cause(err))
		return
	}

	log.Info(ctx, "system totals",
		log.Int("organizations", totals.Organizations),
		log.Int("memberships", totals.Memberships),
		log.Int("projects", totals.Projects),
	)
}
