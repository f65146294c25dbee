package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/LdDl/roadnet"
)

// rewritePageSize is number of edges read per page while rewriting an edge table
const rewritePageSize = 50_000

// sqliteStore implements roadnet.Storage on top of an embedded SQLite database
type sqliteStore struct {
	db *sql.DB
}

// Open opens (or creates) SQLite database with WAL mode enabled
func Open(ctx context.Context, path string) (roadnet.Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open database")
	}
	// single writer: every mutation path runs sequentially
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Can't enable WAL")
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Can't set synchronous mode")
	}
	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

const (
	nodesSchema = `
CREATE TABLE IF NOT EXISTS nodes (
	id  INTEGER PRIMARY KEY,
	lat FLOAT,
	lon FLOAT
);`
	collapseSchema = `
CREATE TABLE IF NOT EXISTS collapse_nodes (
	id_to_prune INTEGER PRIMARY KEY,
	id_to_use   INTEGER
);`
	edgesSchema = `
CREATE TABLE IF NOT EXISTS %s (
	from_id INTEGER,
	to_id   INTEGER,
	PRIMARY KEY (from_id, to_id)
);`
)

// Prepare creates tables if they don't exist
func (s *sqliteStore) Prepare(ctx context.Context, modes []roadnet.Mode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, nodesSchema); err != nil {
		return errors.Wrap(err, "Can't create nodes table")
	}
	if _, err := tx.ExecContext(ctx, collapseSchema); err != nil {
		return errors.Wrap(err, "Can't create collapse_nodes table")
	}
	for _, mode := range modes {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(edgesSchema, mode.EdgeTable())); err != nil {
			return errors.Wrapf(err, "Can't create %s table", mode.EdgeTable())
		}
	}
	return tx.Commit()
}

// Flush upserts the batch ignoring conflicting keys
func (s *sqliteStore) Flush(ctx context.Context, batch *roadnet.Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertNodes(ctx, tx, batch.Nodes); err != nil {
		return errors.Wrap(err, "Can't insert nodes")
	}
	for mode, edges := range batch.Edges {
		if err := insertEdges(ctx, tx, mode.EdgeTable(), edges); err != nil {
			return errors.Wrapf(err, "Can't insert %s edges", mode)
		}
	}
	if err := insertCollapse(ctx, tx, batch.Collapse); err != nil {
		return errors.Wrap(err, "Can't insert collapse mappings")
	}
	return tx.Commit()
}

func insertNodes(ctx context.Context, tx *sql.Tx, nodes []roadnet.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO nodes(id, lat, lon)
VALUES(?, ?, ?)
ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, node := range nodes {
		if _, err := stmt.ExecContext(ctx, node.ID, node.Lat, node.Lon); err != nil {
			return err
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, table string, edges []roadnet.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
INSERT INTO %s(from_id, to_id)
VALUES(?, ?)
ON CONFLICT (from_id, to_id) DO NOTHING`, table))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, edge := range edges {
		if _, err := stmt.ExecContext(ctx, edge.From, edge.To); err != nil {
			return err
		}
	}
	return nil
}

func insertCollapse(ctx context.Context, tx *sql.Tx, mappings []roadnet.CollapseMapping) error {
	if len(mappings) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO collapse_nodes(id_to_prune, id_to_use)
VALUES(?, ?)
ON CONFLICT (id_to_prune) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, m := range mappings {
		if _, err := stmt.ExecContext(ctx, m.IDToPrune, m.IDToUse); err != nil {
			return err
		}
	}
	return nil
}

// CollapseMappings returns every collapse mapping ordered by pruned ID
func (s *sqliteStore) CollapseMappings(ctx context.Context) ([]roadnet.CollapseMapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id_to_prune, id_to_use FROM collapse_nodes ORDER BY id_to_prune`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []roadnet.CollapseMapping
	for rows.Next() {
		var m roadnet.CollapseMapping
		if err := rows.Scan(&m.IDToPrune, &m.IDToUse); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// ApplyCanonical replaces collapse mappings by targets, prunes nodes and rewrites edge tables.
// Everything happens in one transaction, so a failure leaves prior data intact.
func (s *sqliteStore) ApplyCanonical(ctx context.Context, targets map[int64]int64, modes []roadnet.Mode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM collapse_nodes`); err != nil {
		return errors.Wrap(err, "Can't clear collapse mappings")
	}
	mappings := make([]roadnet.CollapseMapping, 0, len(targets))
	for prune, use := range targets {
		mappings = append(mappings, roadnet.CollapseMapping{IDToPrune: prune, IDToUse: use})
	}
	if err := insertCollapse(ctx, tx, mappings); err != nil {
		return errors.Wrap(err, "Can't store flattened collapse mappings")
	}
	if _, err := tx.ExecContext(ctx, `
DELETE FROM nodes
WHERE id IN (SELECT id_to_prune FROM collapse_nodes)`); err != nil {
		return errors.Wrap(err, "Can't delete collapsed nodes")
	}
	for _, mode := range modes {
		if err := rewriteEdges(ctx, tx, mode.EdgeTable(), targets); err != nil {
			return errors.Wrapf(err, "Can't rewrite %s edges", mode)
		}
	}
	return tx.Commit()
}

// rewriteEdges streams the edge table page by page into a fresh table, then swaps them
func rewriteEdges(ctx context.Context, tx *sql.Tx, table string, targets map[int64]int64) error {
	tableNew := table + "_new"
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, tableNew)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(edgesSchema, tableNew)); err != nil {
		return errors.Wrap(err, "Can't create new table")
	}

	var last *roadnet.Edge
	for {
		page, err := readEdgesPage(ctx, tx, table, last)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}
		rewritten := make([]roadnet.Edge, 0, len(page))
		for _, edge := range page {
			// self loops generated by collapsing are dropped
			if canonical, ok := roadnet.CanonicalEdge(edge, targets); ok {
				rewritten = append(rewritten, canonical)
			}
		}
		if err := insertEdges(ctx, tx, tableNew, rewritten); err != nil {
			return err
		}
		last = &page[len(page)-1]
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE %s`, table)); err != nil {
		return errors.Wrap(err, "Can't drop old table")
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s RENAME TO %s`, tableNew, table)); err != nil {
		return errors.Wrap(err, "Can't replace old table")
	}
	return nil
}

func readEdgesPage(ctx context.Context, tx *sql.Tx, table string, after *roadnet.Edge) ([]roadnet.Edge, error) {
	var rows *sql.Rows
	var err error
	if after == nil {
		rows, err = tx.QueryContext(ctx, fmt.Sprintf(`
SELECT from_id, to_id FROM %s
ORDER BY from_id, to_id
LIMIT ?`, table), rewritePageSize)
	} else {
		rows, err = tx.QueryContext(ctx, fmt.Sprintf(`
SELECT from_id, to_id FROM %s
WHERE (from_id, to_id) > (?, ?)
ORDER BY from_id, to_id
LIMIT ?`, table), after.From, after.To, rewritePageSize)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	page := make([]roadnet.Edge, 0, rewritePageSize)
	for rows.Next() {
		var edge roadnet.Edge
		if err := rows.Scan(&edge.From, &edge.To); err != nil {
			return nil, err
		}
		page = append(page, edge)
	}
	return page, rows.Err()
}

// Nodes calls fn for every node ordered by ID
func (s *sqliteStore) Nodes(ctx context.Context, fn func(roadnet.Node) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, lat, lon FROM nodes ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var node roadnet.Node
		if err := rows.Scan(&node.ID, &node.Lat, &node.Lon); err != nil {
			return err
		}
		if err := fn(node); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Edges calls fn for every edge of the mode ordered by endpoints
func (s *sqliteStore) Edges(ctx context.Context, mode roadnet.Mode, fn func(roadnet.Edge) error) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT from_id, to_id FROM %s ORDER BY from_id, to_id`, mode.EdgeTable()))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var edge roadnet.Edge
		if err := rows.Scan(&edge.From, &edge.To); err != nil {
			return err
		}
		if err := fn(edge); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Stats counts rows of every table
func (s *sqliteStore) Stats(ctx context.Context, modes []roadnet.Mode) (roadnet.StorageStats, error) {
	stats := roadnet.StorageStats{
		Edges: make(map[roadnet.Mode]int64, len(modes)),
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&stats.Nodes); err != nil {
		return stats, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collapse_nodes`).Scan(&stats.CollapseMappings); err != nil {
		return stats, err
	}
	for _, mode := range modes {
		var count int64
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, mode.EdgeTable())).Scan(&count); err != nil {
			return stats, err
		}
		stats.Edges[mode] = count
	}
	return stats, nil
}
