package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/understanding-check/internal/check"
)

// GET /checks/{checkID}/completions[?format=csv|xlsx]
func ListCompletionsHandler(store check.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checkID := chi.URLParam(r, "checkID")
		list, err := store.ListCompletions(r.Context(), checkID)
		if err != nil {
			storeError(w, err)
			return
		}
		switch r.URL.Query().Get("format") {
		case "csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="`+checkID+`_completions.csv"`)
			if err := check.WriteCSV(w, list); err != nil {
				logger.Error("write csv export", "check_id", checkID, "error", err)
			}
		case "xlsx":
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", `attachment; filename="`+checkID+`_completions.xlsx"`)
			if err := check.WriteXLSX(w, list); err != nil {
				logger.Error("write xlsx export", "check_id", checkID, "error", err)
			}
		default:
			writeJSON(w, http.StatusOK, list)
		}
	}
}
