package raft

import (
	"context"
	"fmt"
	"time"

	"github.com/ASHISH26940/booksdb/internal/config"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
)

// Node is a single-voter raft instance whose log, stable store, snapshots
// and transport all live in memory.
type Node struct {
	*raft.Raft
	transport *raft.InmemTransport
}

// NewNode starts raft for the given FSM and bootstraps a one-server cluster.
func NewNode(cfg *config.Config, fsm raft.FSM, logger hclog.Logger) (*Node, error) {
	n, err := startRaft(cfg, fsm, logger)
	if err != nil {
		return nil, err
	}

	bootstrap := raft.Configuration{
		Servers: []raft.Server{
			{
				ID:      raft.ServerID(cfg.NodeID),
				Address: n.transport.LocalAddr(),
			},
		},
	}
	if err := n.BootstrapCluster(bootstrap).Error(); err != nil {
		n.Close()
		return nil, fmt.Errorf("bootstrap cluster: %w", err)
	}
	return n, nil
}

// startRaft creates the raft instance without any cluster configuration.
// Until bootstrapped it stays a follower and never starts an election.
func startRaft(cfg *config.Config, fsm raft.FSM, logger hclog.Logger) (*Node, error) {
	rc := raft.DefaultConfig()
	rc.LocalID = raft.ServerID(cfg.NodeID)
	rc.Logger = logger.Named("raft")
	rc.HeartbeatTimeout = cfg.Raft.HeartbeatTimeout
	rc.ElectionTimeout = cfg.Raft.ElectionTimeout
	rc.LeaderLeaseTimeout = cfg.Raft.LeaderLeaseTimeout
	rc.CommitTimeout = cfg.Raft.CommitTimeout
	if cfg.Raft.SnapshotThreshold > 0 {
		rc.SnapshotThreshold = cfg.Raft.SnapshotThreshold
	}

	logs := raft.NewInmemStore()
	snapshots := raft.NewInmemSnapshotStore()
	_, transport := raft.NewInmemTransport(raft.ServerAddress(cfg.NodeID))

	r, err := raft.NewRaft(rc, fsm, logs, logs, snapshots, transport)
	if err != nil {
		transport.Close()
		return nil, fmt.Errorf("create raft node: %w", err)
	}
	return &Node{Raft: r, transport: transport}, nil
}

// WaitForLeader blocks until this node has won the election or ctx ends.
func (n *Node) WaitForLeader(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if n.State() == raft.Leader {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for leadership: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close shuts raft down and releases the transport.
func (n *Node) Close() error {
	err := n.Shutdown().Error()
	n.transport.Close()
	return err
}
