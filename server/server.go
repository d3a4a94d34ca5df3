// Package server serves the charts of saved results and the live progress of a run.
package server

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"testbed/logging"
	"testbed/results"
	"testbed/server/fastview"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const shutdownGracePeriod = 5 * time.Second

// Server serves an index of the saved results, each result as a chart rendered from its
// fixture, and the monitored run over a websocket.
type Server struct {
	ctx         context.Context
	addr        string
	fixturesDir string
	monitor     *Monitor
	router      *mux.Router
}

// NewServer builds the routes. The server stops when @ctx is cancelled.
func NewServer(
	ctx context.Context,
	addr string,
	fixturesDir string,
	monitor *Monitor,
) (*Server, error) {
	if monitor == nil {
		return nil, errors.New("nil monitor")
	}

	server := &Server{
		ctx:         ctx,
		addr:        addr,
		fixturesDir: fixturesDir,
		monitor:     monitor,
		router:      mux.NewRouter(),
	}
	server.router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	server.router.HandleFunc("/charts/{name:[A-Za-z0-9_-]+}", server.serveChart).Methods(http.MethodGet)
	server.router.HandleFunc("/progress", server.serveProgress).Methods(http.MethodGet)
	server.router.HandleFunc("/ws", server.serveWebsocket)
	return server, nil
}

// Handler returns the server's routes.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Serve listens on the server's address until its context is cancelled.
func (server *Server) Serve() error {
	srv := &http.Server{
		Addr:    server.addr,
		Handler: server.router,
	}

	go func() {
		<-server.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Infof("serving on %s", server.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}
	return nil
}

// chartLink is an index entry.
type chartLink struct {
	ImgName string
	Name    string
	RunID   string
}

// Serve the index.html main page.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	names, err := results.ListFixtures(server.fixturesDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	links := make([]chartLink, 0, len(names))
	for _, name := range names {
		result, runID, err := results.ReadFixture(filepath.Join(server.fixturesDir, name+results.FixtureExt))
		if err != nil {
			logging.Warnf("index: %v", err)
			continue
		}
		links = append(links, chartLink{ImgName: result.ImgName, Name: result.Name, RunID: runID})
	}

	w.Header().Set("Content-Type", "text/html")
	if err = renderTemplate(w, links); err != nil {
		logging.Errorf("index: %v", err)
	}
}

// serveChart renders a saved result from its fixture.
func (server *Server) serveChart(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	result, _, err := results.ReadFixture(filepath.Join(server.fixturesDir, name+results.FixtureExt))
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if err = results.Render(w, result); err != nil {
		logging.Errorf("chart %s: %v", name, err)
	}
}

// serveProgress returns a single snapshot of the monitored run.
func (server *Server) serveProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(server.monitor.View()); err != nil {
		logging.Errorf("progress: %v", err)
	}
}

// serveWebsocket publishes the monitored run to the client until it disconnects.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cli, err := fastview.NewClient(server.monitor.Updates(ctx.Done()), w, r)
	if err != nil {
		logging.Warnf("websocket: %v", err)
		return
	}
	if err = cli.Sync(); err != nil {
		logging.Warnf("websocket: %v", err)
	}
}

func renderTemplate(w io.Writer, links []chartLink) error {
	t, err := template.New("index.html").Parse(indexTemplate)
	if err != nil {
		return errors.Wrap(err, "parse index")
	}
	return errors.Wrap(t.Execute(w, links), "execute index")
}

// The index lists the saved charts and bootstraps the websocket by which the server pushes
// the run's progress.
const indexTemplate = `<!DOCTYPE html>
<html>
	<head>
		<link rel="icon" href="data:,">
		<title>10-armed testbed</title>
		<script>
			const ws = new WebSocket("ws://" + location.host + "/ws");
			ws.onerror = function (event) {
				console.log('WebSocket error: ', event);
			};
			ws.onmessage = function (event) {
				const view = JSON.parse(event.data);
				const lines = [];
				for (const game of view.finished || []) {
					lines.push("epsilon " + game.epsilon + ": done, final reward " +
						game.finalReward.toFixed(3) + ", optimal " + game.finalOptimal.toFixed(1) + "%");
				}
				if (view.current) {
					const game = view.current;
					lines.push("epsilon " + game.epsilon + ": " + game.completed + "/" + game.total +
						" bandits, final reward " + game.finalReward.toFixed(3) +
						", optimal " + game.finalOptimal.toFixed(1) + "%");
				}
				if (view.done) {
					lines.push(view.error ? "run failed: " + view.error : "run finished");
				}
				document.getElementById("progress").textContent = lines.join("\n");
			};
		</script>
	</head>
	<body>
		<h1>Results</h1>
		<ul>
		{{ range . }}
			<li><a href="/charts/{{ .ImgName }}">{{ .Name }}</a> <small>{{ .RunID }}</small></li>
		{{ else }}
			<li>No results yet.</li>
		{{ end }}
		</ul>
		<h2>Progress</h2>
		<pre id="progress">waiting for a run</pre>
	</body>
</html>
`
