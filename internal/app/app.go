package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/config"
)

const shutdownTimeout = 10 * time.Second

// Run restores the stored session and serves the shell until ctx is cancelled
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	account, err := c.Session.Start(ctx)
	switch {
	case err != nil:
		logger.Warn("starting signed out", zap.String("kind", string(domain.KindOf(err))))
	case account != nil:
		logger.Info("session restored",
			zap.String("account_id", account.ID),
			zap.String("state", string(c.Session.State())))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
