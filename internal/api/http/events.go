package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	syncx "github.com/mind-engage/understanding-check/internal/sync"
)

type eventView struct {
	Seq       int64           `json:"seq"`
	SiteID    string          `json:"site_id"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

// GET /events?since=&limit=
// Returns events after seq "since" and the cursor to pass next time.
func ListEventsHandler(feed syncx.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since := int64(0)
		if v := r.URL.Query().Get("since"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				http.Error(w, "bad since", http.StatusBadRequest)
				return
			}
			since = n
		}
		list, err := feed.Since(r.Context(), since, parseIntDefault(r.URL.Query().Get("limit"), 100))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := struct {
			Events []eventView `json:"events"`
			Next   int64       `json:"next"`
		}{Events: make([]eventView, 0, len(list)), Next: since}
		for _, e := range list {
			out.Events = append(out.Events, eventView{
				Seq:       e.Seq,
				SiteID:    e.SiteID,
				Type:      e.Type,
				Key:       e.Key,
				Data:      json.RawMessage(e.DataJSON),
				CreatedAt: e.CreatedAt,
			})
			out.Next = e.Seq
		}
		writeJSON(w, http.StatusOK, out)
	}
}
