// Package httpapi exposes read-only archive queries over HTTP.
//
// The API is deliberately narrow: listing archives, listing versions,
// and as-of snapshots. Writes go through the CLI so that every mutation
// leaves an ingest record.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/panelarc/panelarc/internal/panel"
	"github.com/panelarc/panelarc/internal/store"
)

// Server serves the read-only archive API.
type Server struct {
	store  *store.Store
	router chi.Router
}

// NewServer builds a server around an open store.
func NewServer(s *store.Store) *Server {
	srv := &Server{store: s}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/archives", srv.handleListArchives)
		r.Get("/archives/{name}/versions", srv.handleVersions)
		r.Get("/archives/{name}/snapshot", srv.handleSnapshot)
	})
	srv.router = r

	return srv
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests within the shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context, cfg Config) error {
	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

// archiveJSON is one archive in the listing response.
type archiveJSON struct {
	Name         string `json:"name"`
	LocationKind string `json:"location_kind"`
	TimeKind     string `json:"time_kind"`
	RowCount     int    `json:"row_count"`
}

func (s *Server) handleListArchives(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.ListArchives(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]archiveJSON, len(infos))
	for i, info := range infos {
		out[i] = archiveJSON{
			Name:         info.Name,
			LocationKind: string(info.LocationKind),
			TimeKind:     string(info.TimeKind),
			RowCount:     info.RowCount,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"archives": out})
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	a, err := s.store.LoadArchive(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	timeKind := a.TimeKind()
	versions := a.VersionsObserved()
	rendered := make([]string, len(versions))
	for i, v := range versions {
		rendered[i] = timeKind.Format(v)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"archive":   name,
		"time_kind": string(timeKind),
		"versions":  rendered,
	})
}

// snapshotRowJSON is one row of a snapshot response. Fields carry the
// canonical JSON encoding.
type snapshotRowJSON struct {
	Location string          `json:"location"`
	Time     string          `json:"time"`
	Fields   json.RawMessage `json:"fields"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	a, err := s.store.LoadArchive(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	timeKind := a.TimeKind()

	cutoff, ok := a.MaxVersion()
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		cutoff, err = timeKind.Parse(asOf)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "BAD_AS_OF", err.Error())
			return
		}
	} else if !ok {
		writeErrorJSON(w, http.StatusBadRequest, "BAD_AS_OF", "archive is empty; as_of is required")
		return
	}

	snap := a.AsOf(cutoff)
	rows := make([]snapshotRowJSON, len(snap.Rows))
	for i, row := range snap.Rows {
		fields, err := panel.MarshalCanonical(row.Fields)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		rows[i] = snapshotRowJSON{
			Location: row.Location,
			Time:     timeKind.Format(row.Time),
			Fields:   json.RawMessage(fields),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"archive":       name,
		"as_of":         timeKind.Format(cutoff),
		"future_cutoff": snap.FutureCutoff,
		"rows":          rows,
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrArchiveNotFound) {
		writeErrorJSON(w, http.StatusNotFound, "ARCHIVE_NOT_FOUND", err.Error())
		return
	}
	slog.Error("request failed",
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrorJSON(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
