package webui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/logger"
	"github.com/kayz/osprey/internal/report"
	"github.com/kayz/osprey/internal/services"
)

// Server exposes the search dispatcher over HTTP. Searches run in the
// background; clients poll the snapshot endpoint or subscribe to the
// websocket event stream.
type Server struct {
	dispatcher *services.Dispatcher
	store      *services.Store
	startedAt  time.Time
	upgrader   websocket.Upgrader
}

func NewServer(dispatcher *services.Dispatcher) *Server {
	return &Server{
		dispatcher: dispatcher,
		store:      services.NewStore(),
		startedAt:  time.Now().UTC(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/search/", s.handleSearchByID)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(defaultIndexHTML))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"started_at":     s.startedAt.Format(time.RFC3339),
		"uptime_sec":     int(time.Since(s.startedAt).Seconds()),
		"active_queries": len(s.store.IDs()),
	})
}

type searchRequest struct {
	Query string   `json:"query"`
	Tags  []string `json:"tags"`
}

type searchResponse struct {
	ID   string   `json:"id"`
	Tags []string `json:"tags"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	var tags []classify.Tag
	if len(req.Tags) == 0 {
		tags = classify.Classify(req.Query)
	} else {
		for _, raw := range req.Tags {
			tag, err := classify.ParseTag(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			tags = append(tags, tag)
		}
	}

	search := s.store.Create(req.Query, tags)
	go s.runSearch(search.ID, req.Query, tags)

	wire := make([]string, len(tags))
	for i, t := range tags {
		wire[i] = t.String()
	}
	writeJSON(w, http.StatusAccepted, searchResponse{ID: search.ID, Tags: wire})
}

func (s *Server) runSearch(id, query string, tags []classify.Tag) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s.dispatcher.RunWithProgress(ctx, query, tags, func(done, total int, res services.Result) {
		s.store.Append(id, done, total, res)
	})
	if err := ctx.Err(); err != nil {
		s.store.Fail(id, err.Error())
		logger.Errorf("webui: search %s aborted: %v", id, err)
		return
	}
	s.store.Complete(id)
}

// handleSearchByID serves /api/search/{id}, plus the /download and /events
// sub-paths.
func (s *Server) handleSearchByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/search/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "search id is required"})
		return
	}

	search, err := s.store.Snapshot(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	switch {
	case sub == "":
		writeJSON(w, http.StatusOK, search)
	case sub == "download/json" || sub == "download/csv":
		s.handleDownload(w, search, strings.TrimPrefix(sub, "download/"))
	case sub == "events":
		s.handleEvents(w, r, id)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown endpoint"})
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, search services.Search, format string) {
	rep := report.Aggregate(search.Results)

	var (
		data []byte
		err  error
		mime string
	)
	switch format {
	case "csv":
		data, err = rep.CSV()
		mime = "text/csv; charset=utf-8"
	default:
		data, err = rep.JSON()
		mime = "application/json; charset=utf-8"
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=osprey_%s.%s", search.ID, format))
	_, _ = w.Write(data)
}

// handleEvents streams search progress over a websocket: one message per
// newly appended result, then a final state message when the search settles.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, id string) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("webui: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sent := 0
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		search, err := s.store.Snapshot(id)
		if err != nil {
			return
		}

		for ; sent < len(search.Results); sent++ {
			event := map[string]any{
				"type":   "result",
				"done":   sent + 1,
				"total":  search.Total,
				"result": search.Results[sent],
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}

		if search.State != services.StateRunning {
			final := map[string]any{
				"type":  "done",
				"state": search.State,
				"error": search.Error,
			}
			_ = conn.WriteJSON(final)
			return
		}

		select {
		case <-ticker.C:
		case <-r.Context().Done():
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

const defaultIndexHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>osprey Web UI</title>
  <style>
    body { font-family: "Segoe UI", sans-serif; margin: 0; background: linear-gradient(145deg,#f7fafc,#e9eef7); color: #1f2937; }
    .wrap { max-width: 900px; margin: 0 auto; padding: 20px; }
    .panel { background: #fff; border-radius: 12px; box-shadow: 0 8px 30px rgba(15,23,42,.08); padding: 16px; }
    #log { min-height: 320px; max-height: 60vh; overflow: auto; white-space: pre-wrap; border: 1px solid #d1d5db; border-radius: 8px; padding: 12px; background: #f9fafb; font-family: monospace; font-size: 13px; }
    .row { display: flex; gap: 8px; margin-top: 10px; }
    input { flex: 1; padding: 10px; border: 1px solid #cbd5e1; border-radius: 8px; }
    button { padding: 10px 16px; border: 0; border-radius: 8px; background: #0f766e; color: #fff; cursor: pointer; }
    button:hover { background: #0d9488; }
    a.dl { margin-right: 12px; color: #0f766e; }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="panel">
      <h2>osprey</h2>
      <div id="log"></div>
      <div class="row">
        <input id="query" placeholder="username, email, URL or image URL..." />
        <button id="go">Search</button>
      </div>
      <p id="downloads"></p>
    </div>
  </div>
  <script>
    const log = document.getElementById('log');
    const query = document.getElementById('query');
    const go = document.getElementById('go');
    const downloads = document.getElementById('downloads');
    const append = (text) => { log.textContent += text + '\n'; log.scrollTop = log.scrollHeight; };
    async function startSearch() {
      const q = query.value.trim();
      if (!q) return;
      log.textContent = '';
      downloads.innerHTML = '';
      const resp = await fetch('/api/search', { method:'POST', headers:{'Content-Type':'application/json'}, body: JSON.stringify({ query: q })});
      const data = await resp.json();
      if (data.error) { append('error: ' + data.error); return; }
      append('search ' + data.id + ' -> ' + data.tags.join(', '));
      const proto = location.protocol === 'https:' ? 'wss' : 'ws';
      const ws = new WebSocket(proto + '://' + location.host + '/api/search/' + data.id + '/events');
      ws.onmessage = (e) => {
        const ev = JSON.parse(e.data);
        if (ev.type === 'result') {
          const r = ev.result;
          append('[' + ev.done + '/' + ev.total + '] ' + (r.success ? 'OK  ' : 'FAIL') + ' ' + r.service + ' (' + r.response_time.toFixed(2) + 's)' + (r.error ? ' - ' + r.error : ''));
        } else if (ev.type === 'done') {
          append('search ' + ev.state + (ev.error ? ': ' + ev.error : ''));
          downloads.innerHTML = '<a class="dl" href="/api/search/' + data.id + '/download/json">Download JSON</a>' +
            '<a class="dl" href="/api/search/' + data.id + '/download/csv">Download CSV</a>';
        }
      };
    }
    go.addEventListener('click', startSearch);
    query.addEventListener('keydown', (e) => { if (e.key === 'Enter') startSearch(); });
  </script>
</body>
</html>`
