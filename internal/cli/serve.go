package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt)
		},
	}
	cmd.Flags().String("addr", ":9091", "listen address")
	_ = rt.v.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

// serve работает до отмены ctx, затем плавно останавливает сервер
func serve(ctx context.Context, rt *runtime) error {
	a, err := newApp(ctx, rt.cfg, rt.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			rt.log.Warn("close resources", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:    rt.cfg.HTTP.Addr,
		Handler: a.server().Engine(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.log.Info("HTTP server listening", "addr", httpServer.Addr, "store", rt.cfg.Store.Driver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		rt.log.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
