// Package raft contains the command log that serializes writes to the book store.
package raft

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ASHISH26940/booksdb/internal/store"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
)

// Command ops.
const (
	OpAddBook     = "ADD_BOOK"
	OpUpdateTitle = "UPDATE_TITLE"
)

// Command represents a single write that will be committed to the Raft log.
// CreatedAt is stamped by the proposer so every apply sees the same time.
type Command struct {
	Op        string    `json:"op"`
	ID        int64     `json:"id,omitempty"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Encode marshals the command for raft.Apply.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// Result is what FSM.Apply returns; it comes back through ApplyFuture.Response.
type Result struct {
	Book  store.Book
	Found bool
	Err   error
}

// BookStore is the part of the store the FSM needs.
type BookStore interface {
	AddAt(title, author string, createdAt time.Time) (store.Book, error)
	UpdateTitle(id int64, title string) (store.Book, bool, error)
	State() ([]store.Book, int64)
	Restore(books []store.Book, nextID int64) error
}

// FSM is a Finite State Machine that applies Raft logs to the book store.
type FSM struct {
	store BookStore
	log   hclog.Logger
}

// NewFSM creates a new FSM for the given store.
func NewFSM(st BookStore, logger hclog.Logger) *FSM {
	return &FSM{
		store: st,
		log:   logger.Named("fsm"),
	}
}

// Apply applies a Raft log entry to the store and returns a *Result.
func (f *FSM) Apply(entry *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(entry.Data, &cmd); err != nil {
		f.log.Error("failed to decode command", "index", entry.Index, "error", err)
		return &Result{Err: fmt.Errorf("decode command: %w", err)}
	}
	return f.ApplyCommand(cmd)
}

// ApplyCommand runs one decoded command against the store.
func (f *FSM) ApplyCommand(cmd Command) *Result {
	f.log.Debug("applying command", "op", cmd.Op, "id", cmd.ID)

	switch cmd.Op {
	case OpAddBook:
		b, err := f.store.AddAt(cmd.Title, cmd.Author, cmd.CreatedAt)
		return &Result{Book: b, Found: err == nil, Err: err}
	case OpUpdateTitle:
		b, ok, err := f.store.UpdateTitle(cmd.ID, cmd.Title)
		return &Result{Book: b, Found: ok, Err: err}
	default:
		f.log.Warn("unrecognized command op", "op", cmd.Op)
		return &Result{Err: fmt.Errorf("unrecognized command op %q", cmd.Op)}
	}
}

type snapshotData struct {
	Books  []store.Book `json:"books"`
	NextID int64        `json:"next_id"`
}

// Snapshot captures the store for log compaction.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	books, next := f.store.State()
	return &fsmSnapshot{data: snapshotData{Books: books, NextID: next}}, nil
}

// Restore is used to restore an FSM from a snapshot.
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()
	var data snapshotData
	if err := json.NewDecoder(rc).Decode(&data); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if err := f.store.Restore(data.Books, data.NextID); err != nil {
		return err
	}
	f.log.Info("restored from snapshot", "books", len(data.Books), "next_id", data.NextID)
	return nil
}

type fsmSnapshot struct {
	data snapshotData
}

func (s *fsmSnapshot) Persist(sink raft.SnapshotSink) error {
	if err := json.NewEncoder(sink).Encode(s.data); err != nil {
		sink.Cancel()
		return err
	}
	return sink.Close()
}

func (s *fsmSnapshot) Release() {}
