package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"txflow/internal/model"
)

// Schema creates the tables written by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS tx_graphs (
	graph_key   TEXT PRIMARY KEY,
	tx_hash     TEXT NOT NULL DEFAULT '',
	node_count  INTEGER NOT NULL,
	edge_count  INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS graph_nodes (
	graph_key TEXT NOT NULL REFERENCES tx_graphs (graph_key) ON DELETE CASCADE,
	node_id   TEXT NOT NULL,
	node_type TEXT NOT NULL,
	size      DOUBLE PRECISION NOT NULL,
	volume    DOUBLE PRECISION NOT NULL,
	title     TEXT NOT NULL,
	PRIMARY KEY (graph_key, node_id)
);

CREATE TABLE IF NOT EXISTS graph_edges (
	graph_key   TEXT NOT NULL REFERENCES tx_graphs (graph_key) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	from_node   TEXT NOT NULL,
	to_node     TEXT NOT NULL,
	event_name  TEXT NOT NULL,
	event_index INTEGER NOT NULL,
	token       TEXT NOT NULL,
	amount      DOUBLE PRECISION NOT NULL,
	title       TEXT NOT NULL,
	PRIMARY KEY (graph_key, seq)
);
`

// Store provides Postgres persistence for assembled graphs.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutGraph replaces the stored graph for key in one transaction.
func (s *Store) PutGraph(ctx context.Context, key string, g *model.Graph) (err error) {
	if key == "" {
		return fmt.Errorf("graph key required")
	}
	if g == nil {
		return fmt.Errorf("graph is nil")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
		INSERT INTO tx_graphs (graph_key, tx_hash, node_count, edge_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (graph_key)
		DO UPDATE SET
			tx_hash = EXCLUDED.tx_hash,
			node_count = EXCLUDED.node_count,
			edge_count = EXCLUDED.edge_count,
			updated_at = now()
	`, key, g.TransactionHash, len(g.Nodes), len(g.Edges)); err != nil {
		return fmt.Errorf("upsert graph: %w", err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM graph_nodes WHERE graph_key=$1`, key); err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM graph_edges WHERE graph_key=$1`, key); err != nil {
		return fmt.Errorf("clear edges: %w", err)
	}

	batch := &pgx.Batch{}
	for _, n := range g.Nodes {
		batch.Queue(`
			INSERT INTO graph_nodes (graph_key, node_id, node_type, size, volume, title)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, key, n.ID, n.Type, n.Size, n.Volume, n.Title)
	}
	for i, e := range g.Edges {
		batch.Queue(`
			INSERT INTO graph_edges (graph_key, seq, from_node, to_node, event_name, event_index, token, amount, title)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, key, i, e.From, e.To, e.Event, e.EventIndex, e.Token, e.Amount, e.Title)
	}

	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err = br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert graph rows: %w", err)
			}
		}
		if err = br.Close(); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit graph: %w", err)
	}
	return nil
}
