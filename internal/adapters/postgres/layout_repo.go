package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/railmap/internal/core/domain"
)

// LayoutRepo implements ports.LayoutRepository. Routes and footprints are
// stored as JSON on the layout row; markers and stations get a row each so
// they can be queried by route.
type LayoutRepo struct {
	db *DB
}

func NewLayoutRepo(db *DB) *LayoutRepo { return &LayoutRepo{db: db} }

// Save inserts the layout and its placements in one transaction, replacing
// any layout with the same ID.
func (r *LayoutRepo) Save(ctx context.Context, l *domain.Layout) error {
	routes, err := json.Marshal(l.Routes)
	if err != nil {
		return fmt.Errorf("encode routes: %w", err)
	}
	footprints, err := json.Marshal(l.Footprints)
	if err != nil {
		return fmt.Errorf("encode footprints: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM layouts WHERE id = $1`, l.ID); err != nil {
		return fmt.Errorf("replace layout: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO layouts (id, name, origin_lon, origin_lat, routes, footprints, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, l.ID, l.Name, l.Origin.Lon, l.Origin.Lat, routes, footprints, l.CreatedAt); err != nil {
		return fmt.Errorf("insert layout: %w", err)
	}

	batch := &pgx.Batch{}
	for i, m := range l.Markers {
		batch.Queue(`
			INSERT INTO layout_markers (layout_id, seq, ref, x, y, orientation, route_ref, segment, label)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, l.ID, i, m.Ref, m.X, m.Y, m.Orientation, m.RouteRef, m.Segment, m.Label)
	}
	for i, st := range l.Stations {
		batch.Queue(`
			INSERT INTO layout_stations (layout_id, seq, name, route_ref, x, y, orientation, distance)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, l.ID, i, st.Name, st.RouteRef, st.X, st.Y, st.Orientation, st.Distance)
	}
	br := tx.SendBatch(ctx, batch)
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("batch close: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *LayoutRepo) GetByID(ctx context.Context, id string) (*domain.Layout, error) {
	var (
		l                  domain.Layout
		routes, footprints []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, origin_lon, origin_lat, routes, footprints, created_at
		FROM layouts WHERE id = $1
	`, id).Scan(&l.ID, &l.Name, &l.Origin.Lon, &l.Origin.Lat, &routes, &footprints, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLayoutNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(routes, &l.Routes); err != nil {
		return nil, fmt.Errorf("decode routes: %w", err)
	}
	if err := json.Unmarshal(footprints, &l.Footprints); err != nil {
		return nil, fmt.Errorf("decode footprints: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT ref, x, y, orientation, route_ref, segment, label
		FROM layout_markers WHERE layout_id = $1 ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	l.Markers, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MarkerPlacement, error) {
		var m domain.MarkerPlacement
		err := row.Scan(&m.Ref, &m.X, &m.Y, &m.Orientation, &m.RouteRef, &m.Segment, &m.Label)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("markers: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `
		SELECT name, route_ref, x, y, orientation, distance
		FROM layout_stations WHERE layout_id = $1 ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	l.Stations, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StationPlacement, error) {
		var st domain.StationPlacement
		err := row.Scan(&st.Name, &st.RouteRef, &st.X, &st.Y, &st.Orientation, &st.Distance)
		return st, err
	})
	if err != nil {
		return nil, fmt.Errorf("stations: %w", err)
	}
	return &l, nil
}

// List returns summaries newest first, with the total row count.
func (r *LayoutRepo) List(ctx context.Context, offset, limit int) ([]domain.LayoutSummary, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM layouts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT l.id, l.name, l.origin_lon, l.origin_lat, l.routes, l.created_at,
		       (SELECT count(*) FROM layout_markers m WHERE m.layout_id = l.id)
		FROM layouts l
		ORDER BY l.created_at DESC, l.id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.LayoutSummary
	for rows.Next() {
		var (
			s      domain.LayoutSummary
			routes []byte
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Origin.Lon, &s.Origin.Lat, &routes, &s.CreatedAt, &s.MarkerCount); err != nil {
			return nil, 0, err
		}
		var paths []domain.RoutePath
		if err := json.Unmarshal(routes, &paths); err != nil {
			return nil, 0, fmt.Errorf("decode routes: %w", err)
		}
		for _, p := range paths {
			s.RouteRefs = append(s.RouteRefs, p.Ref)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Delete removes a layout; placements go with it by cascade.
func (r *LayoutRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM layouts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLayoutNotFound
	}
	return nil
}
