// A small gin HTTP server exposing the scheduler's
// point of view: the recent slot reports, the run
// summary, the capacity ledger, health and the
// prometheus metrics.
package gui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/amsen20/adaptsched/internal/report"
	"github.com/amsen20/adaptsched/internal/scheduler"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	router    *gin.Engine
	store     *report.Store
	scheduler *scheduler.Scheduler
}

func New(store *report.Store, sched *scheduler.Scheduler, gatherer prometheus.Gatherer) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:    gin.New(),
		store:     store,
		scheduler: sched,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(cors.Default())
	s.registerRoutes(gatherer)

	return s
}

func (s *Server) registerRoutes(gatherer prometheus.Gatherer) {
	s.router.GET("/reports", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"reports": s.store.Reports(),
		})
	})

	s.router.GET("/reports/latest", func(ctx *gin.Context) {
		latest, ok := s.store.Latest()
		if !ok {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no slot finished yet"})
			return
		}
		ctx.JSON(http.StatusOK, latest)
	})

	s.router.GET("/summary", func(ctx *gin.Context) {
		summary, ok := s.store.Summary()
		if !ok {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "run has not finished"})
			return
		}
		ctx.JSON(http.StatusOK, summary)
	})

	s.router.GET("/state", func(ctx *gin.Context) {
		driver := s.scheduler.Driver()
		if driver == nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler is not started"})
			return
		}

		usage := driver.Ledger().Snapshot()
		ctx.JSON(http.StatusOK, gin.H{
			"run_id": driver.RunId(),
			"state":  driver.State().String(),
			"load":   driver.Ledger().AggregateLoad(),
			"nodes":  usage,
		})
	})

	s.router.GET("/healthz", func(ctx *gin.Context) {
		health, ok := s.scheduler.Health()
		if !ok || health.Stuck {
			ctx.JSON(http.StatusServiceUnavailable, health)
			return
		}
		ctx.JSON(http.StatusOK, health)
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
