package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", exportDisposition("json"))
	if err := s.exporter.WriteJSON(r.Context(), w); err != nil {
		// Headers are already out; all we can do is log.
		slog.ErrorContext(r.Context(), "json export failed", "error", err)
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", exportDisposition("csv"))
	if err := s.exporter.WriteCSV(r.Context(), w); err != nil {
		slog.ErrorContext(r.Context(), "csv export failed", "error", err)
	}
}

func exportDisposition(ext string) string {
	return fmt.Sprintf("attachment; filename=%q", "soldi-export-"+time.Now().UTC().Format("2006-01-02")+"."+ext)
}
