// Package server handles the HTTP API for the book store.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ASHISH26940/booksdb/internal/config"
	internal_raft "github.com/ASHISH26940/booksdb/internal/raft"
	"github.com/ASHISH26940/booksdb/internal/store"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
)

// DataStore is the interface our server needs to read from the storage layer.
// Writes never touch it directly; they go through the raft log.
type DataStore interface {
	ListAll() []store.Book
	Len() int
}

// RaftNode is the subset of *raft.Raft the server uses, so tests can mock it.
type RaftNode interface {
	Apply(cmd []byte, timeout time.Duration) raft.ApplyFuture
	State() raft.RaftState
	Leader() raft.ServerAddress
}

// MaxBodyBytes caps the size of a request body.
const MaxBodyBytes = 64 << 10

// AddRequest is the body of POST /books.
type AddRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// UpdateTitleRequest is the body of PATCH /books/{id}.
type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// Health is the body of GET /healthz.
type Health struct {
	State string `json:"state"`
	Books int    `json:"books"`
}

// Server is the HTTP server for the book store.
type Server struct {
	store        DataStore
	raft         RaftNode
	router       *http.ServeMux
	handler      http.Handler
	log          hclog.Logger
	applyTimeout time.Duration
	now          func() time.Time
}

// New creates a new Server instance.
func New(st DataStore, r RaftNode, cfg *config.Config, logger hclog.Logger) *Server {
	s := &Server{
		store:        st,
		raft:         r,
		router:       http.NewServeMux(),
		log:          logger.Named("http"),
		applyTimeout: cfg.ApplyTimeout,
		now:          time.Now,
	}
	s.registerRoutes()
	s.handler = withRequestID(s.logRequests(withCORS(cfg.AllowedOrigins, s.router)))
	return s
}

// ServeHTTP makes our Server a standard http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /books", s.handleList)
	s.router.HandleFunc("POST /books", s.handleAdd)
	s.router.HandleFunc("PATCH /books/{id}", s.handleUpdateTitle)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListAll())
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, ok := s.propose(w, r, internal_raft.Command{
		Op:        internal_raft.OpAddBook,
		Title:     req.Title,
		Author:    req.Author,
		CreatedAt: s.now(),
	})
	if !ok {
		return
	}
	s.log.Info("added book", "id", res.Book.ID, "request_id", requestID(r))
	writeJSON(w, http.StatusCreated, res.Book)
}

func (s *Server) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "book id must be an integer")
		return
	}
	var req UpdateTitleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, ok := s.propose(w, r, internal_raft.Command{
		Op:    internal_raft.OpUpdateTitle,
		ID:    id,
		Title: req.Title,
	})
	if !ok {
		return
	}
	if !res.Found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("book %d not found", id))
		return
	}
	s.log.Info("updated title", "id", id, "request_id", requestID(r))
	writeJSON(w, http.StatusOK, res.Book)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Health{
		State: s.raft.State().String(),
		Books: s.store.Len(),
	})
}

// propose commits cmd to the raft log and waits for the FSM result.
// On failure it has already written the response and returns false.
func (s *Server) propose(w http.ResponseWriter, r *http.Request, cmd internal_raft.Command) (*internal_raft.Result, bool) {
	if s.raft.State() != raft.Leader {
		writeError(w, http.StatusServiceUnavailable, "writes must be sent to the leader at: "+string(s.raft.Leader()))
		return nil, false
	}

	data, err := cmd.Encode()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode command")
		return nil, false
	}

	future := s.raft.Apply(data, s.applyTimeout)
	if err := future.Error(); err != nil {
		s.log.Error("apply failed", "op", cmd.Op, "request_id", requestID(r), "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, raft.ErrNotLeader) || errors.Is(err, raft.ErrLeadershipLost) || errors.Is(err, raft.ErrEnqueueTimeout) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "failed to apply command: "+err.Error())
		return nil, false
	}

	res, ok := future.Response().(*internal_raft.Result)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("unexpected apply response %T", future.Response()))
		return nil, false
	}
	if res.Err != nil {
		if store.IsInvalidInput(res.Err) {
			writeError(w, http.StatusBadRequest, res.Err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, res.Err.Error())
		}
		return nil, false
	}
	return res, true
}

// decodeBody reads at most MaxBodyBytes of JSON into v. On failure it has
// already written the response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
