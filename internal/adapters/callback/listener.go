// Package callback runs the loopback HTTP listener that receives the identity provider's
// redirect back to the CLI.
package callback

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrClosed is returned by Wait once the listener has been closed.
var ErrClosed = errors.New("callback listener closed")

// Config configures a Listener.
type Config struct {
	// Addr is host:port to bind; port 0 picks a free port.
	Addr string
	// Path is the callback route, e.g. /auth/callback.
	Path   string
	Logger *slog.Logger
}

// Listener accepts exactly one callback request carrying the provider's parameters.
type Listener struct {
	ln     net.Listener
	srv    *http.Server
	path   string
	logger *slog.Logger

	once    sync.Once
	results chan url.Values
	closed  chan struct{}
}

// Listen binds the loopback address and starts serving in the background.
func Listen(cfg Config) (*Listener, error) {
	path := cfg.Path
	if path == "" {
		path = "/auth/callback"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	l := &Listener{
		ln:      ln,
		path:    path,
		logger:  logger,
		results: make(chan url.Values, 1),
		closed:  make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Get(path, l.handleCallback)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	l.srv = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("callback listener stopped", "error", err)
		}
	}()
	return l, nil
}

// URL returns the absolute callback URL for the bound address.
func (l *Listener) URL() string {
	return (&url.URL{Scheme: "http", Host: l.ln.Addr().String(), Path: l.path}).String()
}

// Wait blocks until the callback arrives, ctx ends or the listener is closed.
func (l *Listener) Wait(ctx context.Context) (url.Values, error) {
	select {
	case q := <-l.results:
		return q, nil
	case <-l.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the server. It is safe to call more than once.
func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.closed)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err = l.srv.Shutdown(ctx)
	})
	return err
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if len(q) == 0 {
		// Some providers return the token in the fragment, which browsers never send.
		// The relay page moves it into the query and reloads.
		writePage(w, http.StatusOK, relayPage, nil)
		return
	}

	select {
	case l.results <- q:
		l.logger.DebugContext(r.Context(), "callback received", "params", paramNames(q))
		writePage(w, http.StatusOK, donePage, nil)
	default:
		// A second hit (reload, back navigation) is acknowledged but not delivered.
		writePage(w, http.StatusOK, donePage, nil)
	}
}

func paramNames(q url.Values) []string {
	names := make([]string, 0, len(q))
	for k := range q {
		names = append(names, k)
	}
	return names
}

var (
	relayPage = template.Must(template.New("relay").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Signing in</title></head>
<body><p>Completing sign-in...</p>
<script>
var h = window.location.hash.replace(/^#/, "");
if (h) { window.location.replace(window.location.pathname + "?" + h); }
else { document.body.innerHTML = "<p>Sign-in did not return a session. Close this window and try again.</p>"; }
</script></body></html>`))

	donePage = template.Must(template.New("done").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Signed in</title></head>
<body><p>You can close this window and return to the terminal.</p></body></html>`))
)

func writePage(w http.ResponseWriter, status int, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = t.Execute(w, data)
}
