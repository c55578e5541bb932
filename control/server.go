// Package control implements the HTTP/WebSocket debug and control surface
// of spec §6: read a register, read a memory window, single-step N
// instructions, report the step count, and report whether the CPU is
// running — plus a WebSocket stream that pushes a register/flag snapshot
// after each step request and on every PublishSnapshot call. Grounded on the teacher's api/server.go (a ServeMux
// with one handler per route, CORS restricted to localhost, JSON
// helpers) and api/websocket.go (gorilla/websocket upgrade plus a
// read/write pump pair per client).
package control

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/thoriumlang/thm/vm"
)

// Server is the HTTP control surface for one running Host.
type Server struct {
	host        *vm.Host
	broadcaster *Broadcaster
	mux         *http.ServeMux
	httpServer  *http.Server
	addr        string
}

// NewServer creates a control surface bound to host, listening on addr
// (host:port) once Start is called.
func NewServer(host *vm.Host, addr string) *Server {
	s := &Server{
		host:        host,
		broadcaster: NewBroadcaster(),
		mux:         http.NewServeMux(),
		addr:        addr,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/registers/", s.handleRegister)
	s.mux.HandleFunc("/api/v1/memory", s.handleMemory)
	s.mux.HandleFunc("/api/v1/step", s.handleStep)
	s.mux.HandleFunc("/api/v1/steps", s.handleSteps)
	s.mux.HandleFunc("/api/v1/running", s.handleRunning)
	s.mux.HandleFunc("/api/v1/ws", s.handleWebSocket)
}

// Handler returns the HTTP handler with CORS middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// Start runs the HTTP server, blocking until it stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("control surface listening on http://%s", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server and disconnects any WebSocket
// clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// PublishSnapshot broadcasts host's current snapshot to every connected
// WebSocket client. Callers drive this after each step (or batch of
// steps) they perform outside the control surface, e.g. a debugger TUI.
func (s *Server) PublishSnapshot() {
	snap := s.host.Snapshot()
	msg, err := json.Marshal(snapshotView(snap))
	if err != nil {
		log.Printf("control: marshal snapshot: %v", err)
		return
	}
	s.broadcaster.Publish(msg)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	for _, prefix := range []string{
		"http://localhost", "https://localhost",
		"http://127.0.0.1", "https://127.0.0.1",
		"file://",
	} {
		if len(origin) >= len(prefix) && origin[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleRegister handles GET /api/v1/registers/{i}.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	idStr := r.URL.Path[len("/api/v1/registers/"):]
	id, err := strconv.ParseUint(idStr, 10, 8)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid register ordinal")
		return
	}
	v, err := s.host.ReadRegister(byte(id))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"register": id, "value": v})
}

// handleMemory handles GET /api/v1/memory?from=&size=.
func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	from, err := strconv.ParseUint(r.URL.Query().Get("from"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing 'from'")
		return
	}
	size, err := strconv.ParseUint(r.URL.Query().Get("size"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing 'size'")
		return
	}
	data, err := s.host.ReadMemory(uint32(from), uint32(size))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"from": from, "size": size, "data": data})
}

// handleStep handles POST /api/v1/step?n=.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	n := 1
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid 'n'")
			return
		}
		n = parsed
	}

	executed, stepErr := s.host.Step(n)
	s.PublishSnapshot()

	resp := map[string]any{
		"executed": executed,
		"snapshot": snapshotView(s.host.Snapshot()),
	}
	if stepErr != nil {
		resp["fault"] = stepErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"steps": s.host.StepCount()})
}

func (s *Server) handleRunning(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"running": s.host.IsRunning()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("control: encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": message,
		"code":    status,
	})
}

// snapshot is the wire representation of a vm.Snapshot, built by
// snapshotView.
type snapshot struct {
	Registers [32]int32 `json:"registers"`
	PC        uint32    `json:"pc"`
	SP        uint32    `json:"sp"`
	CS        uint32    `json:"cs"`
	Zero      bool      `json:"zero"`
	Negative  bool      `json:"negative"`
	State     string    `json:"state"`
	Steps     uint64    `json:"steps"`
}

func snapshotView(s vm.Snapshot) snapshot {
	return snapshot{
		Registers: s.Registers,
		PC:        s.PC,
		SP:        s.SP,
		CS:        s.CS,
		Zero:      s.Flags.Zero,
		Negative:  s.Flags.Negative,
		State:     s.State.String(),
		Steps:     s.Steps,
	}
}
