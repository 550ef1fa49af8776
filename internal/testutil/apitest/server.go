// Package apitest provides an in-memory evaluation service for end-to-end client tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
	"github.com/target/rightname-go/internal/domain/model"
)

// SessionCookie is the cookie carrying the server-side session.
const SessionCookie = "session_token"

// Server is a fake evaluation service speaking the real wire format.
//
//nolint:revive // exported fields are the test knobs.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	users    map[string]account
	sessions map[string]domainauth.Identity
	tokens   map[string]domainauth.Identity
	reports  map[string]json.RawMessage
	scripts  map[string][][]byte
	jobs     map[string]int

	// DisableAsync makes /evaluate/start answer 404, forcing the synchronous path.
	DisableAsync bool
	// Script is the status sequence handed to each new job; the last entry repeats.
	Script [][]byte

	Calls map[string]int
}

type account struct {
	password string
	identity domainauth.Identity
}

// NewServer starts a fake service. Close it with srv.Close.
func NewServer() *Server {
	s := &Server{
		users:    make(map[string]account),
		sessions: make(map[string]domainauth.Identity),
		tokens:   make(map[string]domainauth.Identity),
		reports:  make(map[string]json.RawMessage),
		scripts:  make(map[string][][]byte),
		jobs:     make(map[string]int),
		Calls:    make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// APIURL returns the API root the client should be configured with.
func (s *Server) APIURL() string { return s.URL + "/api" }

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", s.handleMe)
	mux.HandleFunc("POST /api/auth/login/email", s.handleLogin)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/session", s.handleSession)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("POST /api/evaluate", s.handleEvaluate)
	mux.HandleFunc("POST /api/evaluate/start", s.handleStart)
	mux.HandleFunc("GET /api/evaluate/status/{id}", s.handleStatus)
	mux.HandleFunc("GET /api/reports/{id}", s.handleReport)
	return mux
}

// AddUser registers an email account.
func (s *Server) AddUser(password string, id domainauth.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(id.Email)] = account{password: password, identity: id}
}

// AddExchangeToken registers a one-shot exchange token.
func (s *Server) AddExchangeToken(token string, id domainauth.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = id
}

// SetScript sets the status sequence handed to each new job.
func (s *Server) SetScript(docs ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Script = docs
}

// SetAsync toggles the asynchronous endpoints.
func (s *Server) SetAsync(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DisableAsync = !enabled
}

// AddReport stores a report body under id.
func (s *Server) AddReport(id, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[id] = json.RawMessage(body)
}

// ExpireSessions drops every server-side session, as a session timeout would.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.sessions)
}

// CallCount returns how often the route "METHOD /path" was hit.
func (s *Server) CallCount(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[route]
}

func (s *Server) count(r *http.Request) {
	route := r.Method + " " + r.URL.Path
	if r.Pattern != "" {
		route = r.Pattern
	}
	s.Calls[route]++
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) currentLocked(r *http.Request) (domainauth.Identity, bool) {
	ck, err := r.Cookie(SessionCookie)
	if err != nil {
		return domainauth.Identity{}, false
	}
	id, ok := s.sessions[ck.Value]
	return id, ok
}

func (s *Server) startSessionLocked(w http.ResponseWriter, id domainauth.Identity) {
	token := uuid.NewString()
	s.sessions[token] = id
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)
	id, ok := s.currentLocked(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, id)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)
	acct, ok := s.users[strings.ToLower(in.Email)]
	if !ok || acct.password != in.Password {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	s.startSessionLocked(w, acct.identity)
	writeJSON(w, http.StatusOK, acct.identity)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)
	email := strings.ToLower(in.Email)
	if _, exists := s.users[email]; exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	id := domainauth.Identity{ID: "user_" + uuid.NewString()[:8], DisplayName: in.Name, Email: email}
	s.users[email] = account{password: in.Password, identity: id}
	s.startSessionLocked(w, id)
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)
	id, ok := s.tokens[in.SessionID]
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid session ID")
		return
	}
	delete(s.tokens, in.SessionID)
	s.startSessionLocked(w, id)
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)
	if ck, err := r.Cookie(SessionCookie); err == nil {
		delete(s.sessions, ck.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) newReportLocked(req model.EvaluationRequest) (string, json.RawMessage) {
	id := "report_" + uuid.NewString()[:8]
	scores := make([]map[string]any, 0, len(req.BrandNames))
	for _, name := range req.BrandNames {
		scores = append(scores, map[string]any{"brand_name": name, "namescore": 82, "verdict": "GO"})
	}
	raw, _ := json.Marshal(map[string]any{
		"report_id":         id,
		"executive_summary": fmt.Sprintf("%d candidate(s) evaluated", len(req.BrandNames)),
		"brand_scores":      scores,
	})
	s.reports[id] = raw
	return id, raw
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req model.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.BrandNames) == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "brand_names is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)
	_, raw := s.newReportLocked(req)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)
	if s.DisableAsync {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	var req model.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.BrandNames) == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "brand_names is required")
		return
	}
	jobID := "job_" + uuid.NewString()[:8]
	script := s.Script
	if len(script) == 0 {
		_, raw := s.newReportLocked(req)
		doc, _ := json.Marshal(map[string]any{"status": "completed", "progress": 100, "result": raw})
		script = [][]byte{doc}
	}
	s.scripts[jobID] = script
	writeJSON(w, http.StatusOK, model.JobHandle{ID: jobID})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)
	jobID := r.PathValue("id")
	script, ok := s.scripts[jobID]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Job not found")
		return
	}
	i := s.jobs[jobID]
	if i >= len(script) {
		i = len(script) - 1
	}
	s.jobs[jobID] = i + 1
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(script[i])
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)
	raw, ok := s.reports[r.PathValue("id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Report not found")
		return
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		writeDetail(w, http.StatusInternalServerError, "corrupt report")
		return
	}
	_, authed := s.currentLocked(r)
	doc["is_authenticated"] = authed
	writeJSON(w, http.StatusOK, doc)
}
