// Package sqlstore keeps player records in SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"arena/internal/game"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// PlayerStore persists game.Player records as JSON documents, with RP and
// coins mirrored into columns for ranking queries.
type PlayerStore struct {
	db     *sql.DB
	driver string
}

// Open connects with driver ("sqlite" or "postgres") and applies the
// embedded migrations.
func Open(ctx context.Context, driver, dsn string) (*PlayerStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store dsn is required")
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if driver == DriverSQLite {
		// a single connection keeps ":memory:" databases shared
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}
	s, err := New(ctx, db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open handle and applies migrations.
func New(ctx context.Context, db *sql.DB, driver string) (*PlayerStore, error) {
	s := &PlayerStore{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *PlayerStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind turns ? placeholders into $n for PostgreSQL.
func (s *PlayerStore) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *PlayerStore) Get(ctx context.Context, id string) (game.Player, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT data FROM players WHERE id = ?"), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Player{}, false, nil
	}
	if err != nil {
		return game.Player{}, false, fmt.Errorf("get player %s: %w", id, err)
	}
	var p game.Player
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return game.Player{}, false, fmt.Errorf("decode player %s: %w", id, err)
	}
	if p.Characters == nil {
		p.Characters = map[int64]*game.CharacterInstance{}
	}
	if p.Inventory == nil {
		p.Inventory = map[string]int{}
	}
	return p, true, nil
}

func (s *PlayerStore) Put(ctx context.Context, id string, p game.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode player %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO players (id, rp, coins, data, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    rp = excluded.rp,
    coins = excluded.coins,
    data = excluded.data,
    updated_at = excluded.updated_at`),
		id, p.RP, p.Coins, string(data), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put player %s: %w", id, err)
	}
	return nil
}

// Standing is one row of the RP leaderboard.
type Standing struct {
	PlayerID string `json:"player_id"`
	RP       int    `json:"rp"`
}

// Leaderboard returns the top n players by RP.
func (s *PlayerStore) Leaderboard(ctx context.Context, n int) ([]Standing, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind("SELECT id, rp FROM players ORDER BY rp DESC, id ASC LIMIT ?"), n)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var out []Standing
	for rows.Next() {
		var st Standing
		if err := rows.Scan(&st.PlayerID, &st.RP); err != nil {
			return nil, fmt.Errorf("leaderboard: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
