package session

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"
	"time"
)

const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLiteStore keeps session values in the session_values table of the
// application database. The table is created by the db package migrations.
type SQLiteStore struct {
	db       *sql.DB
	ttl      time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewSQLiteStore(db *sql.DB, ttl time.Duration) *SQLiteStore {
	s := &SQLiteStore{
		db:   db,
		ttl:  ttl,
		now:  time.Now,
		stop: make(chan struct{}),
	}
	if ttl > 0 {
		go s.reapLoop()
	}
	return s
}

func (s *SQLiteStore) reapLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := s.Reap(context.Background())
			if err != nil {
				log.Printf("[session] sqlite reap failed: %v", err)
			} else if n > 0 {
				log.Printf("[session] reaped %d idle session values", n)
			}
		case <-s.stop:
			return
		}
	}
}

// Reap deletes sessions whose newest value is older than the ttl.
func (s *SQLiteStore) Reap(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.ttl).UTC().Format(sqliteTimeLayout)
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM session_values WHERE session_id IN (
			SELECT session_id FROM session_values
			GROUP BY session_id HAVING MAX(updated_at) < ?
		)`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var val string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM session_values WHERE session_id = ? AND key = ?",
		sessionID, key,
	).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, sessionID, key, value string) error {
	now := s.now().UTC().Format(sqliteTimeLayout)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_values (session_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET value = ?, updated_at = ?`,
		sessionID, key, value, now,
		value, now,
	)
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM session_values WHERE session_id = ?", sessionID)
	return err
}

func (s *SQLiteStore) Touch(ctx context.Context, sessionID string) error {
	now := s.now().UTC().Format(sqliteTimeLayout)
	_, err := s.db.ExecContext(ctx, "UPDATE session_values SET updated_at = ? WHERE session_id = ?", now, sessionID)
	return err
}

// Close stops the reaper. The database itself is owned by the caller.
func (s *SQLiteStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

var _ Store = (*SQLiteStore)(nil)
