package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/andrebq/gistbox/internal/logutil"
)

// Serve runs handler on bind until ctx is cancelled, then drains
// in-flight requests for up to a minute before giving up on them.
func Serve(ctx context.Context, bind string, handler http.Handler) error {
	server := http.Server{
		Handler:           handler,
		Addr:              bind,
		ReadTimeout:       time.Minute * 5,
		WriteTimeout:      time.Minute,
		ReadHeaderTimeout: time.Minute,
		IdleTimeout:       time.Minute * 5,
	}
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", server.Addr).Logger()
	firstErr := make(chan error, 1)
	serverCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		log.Info().Msg("Starting HTTP server")
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			// shutdown took care of it
			log.Info().Msg("Server closed")
			return
		}
		if err != nil {
			firstErr <- err
		}
	}()
	select {
	case <-ctx.Done():
		log.Info().Msg("Initiating shutdown process")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Minute)
		defer cancelShutdown()
		server.Shutdown(shutdownCtx)
		log.Info().Msg("Shutdown completed")
	case <-serverCtx.Done():
	}
	select {
	case err := <-firstErr:
		return err
	default:
		return nil
	}
}
