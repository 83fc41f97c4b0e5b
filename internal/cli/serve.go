package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/idilsaglam/tada/internal/server"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/store/sqlitestore"
	"github.com/idilsaglam/tada/internal/ui"
)

const shutdownTimeout = 5 * time.Second

func openStore(kind, path string) (store.Store, error) {
	switch kind {
	case "sqlite":
		st, err := sqlitestore.Open(path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "json":
		st, err := jsonstore.Open(path)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown store %q (want sqlite or json)", kind)
}

// doServe runs the development backend until ctx is cancelled, then
// drains in-flight requests and closes the store.
func doServe(ctx context.Context, args []string, opt Options) int {
	cfg := opt.Config
	fs := newFlagSet("serve")
	addr := fs.String("addr", cfg.ServerAddr, "listen address")
	kind := fs.String("store", cfg.Store, "storage backend: sqlite or json")
	path := fs.String("db", cfg.DBPath, "database or JSON file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	st, err := openStore(*kind, *path)
	if err != nil {
		ui.Fail("serve: " + err.Error())
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			opt.Logger.Error("close store", "err", err)
		}
	}()
	if err := st.Ping(ctx); err != nil {
		ui.Fail("serve: " + err.Error())
		return 1
	}

	srv := server.New(st, opt.Logger, server.Options{Addr: *addr, CORSOrigins: cfg.CORSOrigins}).HTTPServer()

	lctx, stop := context.WithCancel(ctx)
	defer stop()
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-lctx.Done()
		opt.Logger.Info("shutting down gracefully")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			opt.Logger.Error("server forced to shutdown", "err", err)
		}
	}()

	opt.Logger.Info("serving", "addr", srv.Addr, "store", *kind, "path", *path)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		stop()
		<-done
		ui.Fail("serve: " + err.Error())
		return 1
	}
	<-done
	opt.Logger.Info("server exited")
	return 0
}
