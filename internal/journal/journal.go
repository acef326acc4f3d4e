// Package journal records bus traffic in a SQLite database.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dshills/mechanistan/internal/bus"
	"github.com/dshills/mechanistan/internal/bus/topic"
)

// ErrClosed is returned when writing to a closed journal.
var ErrClosed = errors.New("journal is closed")

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	node        TEXT    NOT NULL,
	topic       TEXT    NOT NULL,
	sender      TEXT    NOT NULL,
	payload     TEXT    NOT NULL,
	size        INTEGER NOT NULL DEFAULT 0,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_topic ON messages(topic);
`

// Entry is one recorded delivery.
type Entry struct {
	ID         int64
	Node       string
	Topic      topic.Topic
	Sender     string
	Payload    string
	Size       int
	RecordedAt time.Time
}

// Journal stores delivered messages.
type Journal struct {
	db      *sql.DB
	onError func(error)
	now     func() time.Time

	mu     sync.Mutex
	closed bool
}

// Option configures a Journal.
type Option func(*Journal)

// WithErrorHandler sets the function called when recording fails inside a
// subscriber.
func WithErrorHandler(fn func(error)) Option {
	return func(j *Journal) {
		j.onError = fn
	}
}

// Open opens or creates the journal at dsn, which is a file path or
// ":memory:".
func Open(ctx context.Context, dsn string, opts ...Option) (*Journal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	j := &Journal{db: db, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Subscriber returns a bus subscriber that records each message under the
// path node has when the message arrives.
func (j *Journal) Subscriber(node *bus.Node) bus.Subscriber {
	return func(msg bus.Message) {
		if err := j.Record(context.Background(), node.Path(), msg); err != nil && j.onError != nil {
			j.onError(err)
		}
	}
}

// Record stores one delivery.
func (j *Journal) Record(ctx context.Context, nodePath string, msg bus.Message) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO messages (node, topic, sender, payload, size, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		nodePath, string(msg.Topic), msg.Sender, msg.Payload, msg.Size, j.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record message: %w", err)
	}
	return nil
}

// Query returns entries whose topic starts with prefix, oldest first.
func (j *Journal) Query(ctx context.Context, prefix topic.Topic) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, node, topic, sender, payload, size, recorded_at
		   FROM messages
		  WHERE substr(topic, 1, length(?)) = ?
		  ORDER BY id`,
		string(prefix), string(prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			t        string
			recorded int64
		)
		if err := rows.Scan(&e.ID, &e.Node, &t, &e.Sender, &e.Payload, &e.Size, &recorded); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.Topic = topic.Topic(t)
		e.RecordedAt = time.Unix(0, recorded)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	return entries, nil
}

// Count returns the number of recorded deliveries.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count journal: %w", err)
	}
	return n, nil
}

// Close closes the database. It is safe to call more than once.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}
