package record

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"github.com/crimson-sun/marionette/internal/model"
)

// Recorder persists emitted frames to a SQLite database so a
// generation session can be replayed or analyzed offline. Poses are
// stored as msgpack blobs keyed by (session, step).
type Recorder struct {
	db *sql.DB
}

// Open creates or opens the recording database at path.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS frames (
			session TEXT NOT NULL,
			step INTEGER NOT NULL,
			temperature DOUBLE NOT NULL,
			pose BLOB NOT NULL,
			created TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session, step)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("record: create schema: %w", err)
	}

	return &Recorder{db: db}, nil
}

// Render stores one frame.
func (r *Recorder) Render(ctx context.Context, frame model.Frame) error {
	blob, err := msgpack.Marshal(frame.Pose)
	if err != nil {
		return fmt.Errorf("record: encode pose: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO frames (session, step, temperature, pose) VALUES (?, ?, ?, ?)",
		frame.Session, frame.Step, frame.Temperature, blob)
	if err != nil {
		return fmt.Errorf("record: insert frame: %w", err)
	}
	return nil
}

// Frames returns a session's recorded frames in step order.
func (r *Recorder) Frames(ctx context.Context, session string) ([]model.Frame, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT step, temperature, pose FROM frames WHERE session = ? ORDER BY step",
		session)
	if err != nil {
		return nil, fmt.Errorf("record: query frames: %w", err)
	}
	defer rows.Close()

	var frames []model.Frame
	for rows.Next() {
		var (
			frame model.Frame
			blob  []byte
		)
		frame.Session = session
		if err := rows.Scan(&frame.Step, &frame.Temperature, &blob); err != nil {
			return nil, fmt.Errorf("record: scan frame: %w", err)
		}
		if err := msgpack.Unmarshal(blob, &frame.Pose); err != nil {
			return nil, fmt.Errorf("record: decode pose: %w", err)
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

// Sessions returns the distinct recorded session IDs, newest first.
func (r *Recorder) Sessions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT session FROM frames GROUP BY session ORDER BY MAX(created) DESC")
	if err != nil {
		return nil, fmt.Errorf("record: query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("record: scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
