package postconfig

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/postbot/core/logger"
)

// Store reads and writes the single configuration record. It has no way to
// create or delete records; Initialize only guarantees the one row exists.
type Store interface {
	Initialize(ctx context.Context) error
	Set(ctx context.Context, f Field, v Value) error
	Get(ctx context.Context, f Field) (Value, error)
	GetAll(ctx context.Context) (Record, error)
}

const (
	insertRecord = `INSERT INTO post_config (id) VALUES (1) ON CONFLICT (id) DO NOTHING`
	selectRecord = `SELECT message, image_path, reaction, start_date, frequency, published FROM post_config WHERE id = 1`

	setMessage   = `UPDATE post_config SET message = ?, updated_at = ? WHERE id = 1`
	setImagePath = `UPDATE post_config SET image_path = ?, updated_at = ? WHERE id = 1`
	setReaction  = `UPDATE post_config SET reaction = ?, updated_at = ? WHERE id = 1`
	setStartDate = `UPDATE post_config SET start_date = ?, updated_at = ? WHERE id = 1`
	setFrequency = `UPDATE post_config SET frequency = ?, updated_at = ? WHERE id = 1`
	setPublished = `UPDATE post_config SET published = ?, updated_at = ? WHERE id = 1`

	getMessage   = `SELECT message FROM post_config WHERE id = 1`
	getImagePath = `SELECT image_path FROM post_config WHERE id = 1`
	getReaction  = `SELECT reaction FROM post_config WHERE id = 1`
	getStartDate = `SELECT start_date FROM post_config WHERE id = 1`
	getFrequency = `SELECT frequency FROM post_config WHERE id = 1`
	getPublished = `SELECT published FROM post_config WHERE id = 1`
)

func updateQuery(f Field) (string, error) {
	switch f {
	case FieldMessage:
		return setMessage, nil
	case FieldImagePath:
		return setImagePath, nil
	case FieldReaction:
		return setReaction, nil
	case FieldStartDate:
		return setStartDate, nil
	case FieldFrequency:
		return setFrequency, nil
	case FieldPublished:
		return setPublished, nil
	}
	return "", &InvalidFieldError{Field: f}
}

func selectQuery(f Field) (string, error) {
	switch f {
	case FieldMessage:
		return getMessage, nil
	case FieldImagePath:
		return getImagePath, nil
	case FieldReaction:
		return getReaction, nil
	case FieldStartDate:
		return getStartDate, nil
	case FieldFrequency:
		return getFrequency, nil
	case FieldPublished:
		return getPublished, nil
	}
	return "", &InvalidFieldError{Field: f}
}

type recordRow struct {
	Message   sql.NullString `db:"message"`
	ImagePath sql.NullString `db:"image_path"`
	Reaction  sql.NullString `db:"reaction"`
	StartDate sql.NullString `db:"start_date"`
	Frequency sql.NullString `db:"frequency"`
	Published bool           `db:"published"`
}

// SQLStore keeps the record in the post_config table. Writes are serialized
// and each one is committed before Set returns.
type SQLStore struct {
	db  *sqlx.DB
	mu  sync.Mutex
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore returns a store over db. The schema comes from migrations.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// Initialize creates the record with every field unset unless it already
// exists. Existing values are never touched.
func (s *SQLStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, s.db.Rebind(insertRecord))
	if err != nil {
		return &StorageError{Op: "initialize", Err: err}
	}
	created, _ := res.RowsAffected()
	logger.Store.LogAttrs(ctx, slog.LevelInfo, "store.initialize",
		slog.String("status", "ok"),
		slog.Bool("created", created > 0),
	)
	return nil
}

// Set writes v into f. Text is stored verbatim; an unset Value clears a
// text field. A value of the wrong kind is an InvalidFieldError.
func (s *SQLStore) Set(ctx context.Context, f Field, v Value) error {
	query, err := updateQuery(f)
	if err != nil {
		return err
	}
	var arg any
	switch {
	case f.IsText() && v.IsBool():
		return &InvalidFieldError{Field: f, Kind: "boolean"}
	case !f.IsText() && !v.IsBool():
		return &InvalidFieldError{Field: f, Kind: "text"}
	case v.IsBool():
		arg = v.Bool()
	case v.Valid:
		arg = v.String()
	}

	start := time.Now()
	s.mu.Lock()
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), arg, s.now().UTC())
	s.mu.Unlock()
	if err != nil {
		return s.fail(ctx, "set", f, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return s.fail(ctx, "set", f, ErrRecordMissing)
	}
	logger.Store.LogAttrs(ctx, slog.LevelDebug, "store.set",
		slog.String("status", "ok"),
		slog.String("field", f.String()),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// Get returns the current value of f, or the unset Value if it was never written.
func (s *SQLStore) Get(ctx context.Context, f Field) (Value, error) {
	query, err := selectQuery(f)
	if err != nil {
		return Value{}, err
	}
	if !f.IsText() {
		var b bool
		if err := s.db.GetContext(ctx, &b, s.db.Rebind(query)); err != nil {
			return Value{}, s.fail(ctx, "get", f, missing(err))
		}
		return Bool(b), nil
	}
	var ns sql.NullString
	if err := s.db.GetContext(ctx, &ns, s.db.Rebind(query)); err != nil {
		return Value{}, s.fail(ctx, "get", f, missing(err))
	}
	return fromNull(ns), nil
}

// GetAll returns a snapshot of every field.
func (s *SQLStore) GetAll(ctx context.Context) (Record, error) {
	var row recordRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(selectRecord)); err != nil {
		return Record{}, s.fail(ctx, "get_all", 0, missing(err))
	}
	return Record{
		Message:   fromNull(row.Message),
		ImagePath: fromNull(row.ImagePath),
		Reaction:  fromNull(row.Reaction),
		StartDate: fromNull(row.StartDate),
		Frequency: fromNull(row.Frequency),
		Published: row.Published,
	}, nil
}

func (s *SQLStore) fail(ctx context.Context, op string, f Field, err error) error {
	attrs := []slog.Attr{
		slog.String("status", "fail"),
		slog.String("op", op),
		slog.String("err", err.Error()),
	}
	if f != 0 {
		attrs = append(attrs, slog.String("field", f.String()))
	}
	logger.Store.LogAttrs(ctx, slog.LevelError, "store.error", attrs...)
	return &StorageError{Op: op, Field: f, Err: err}
}

func missing(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordMissing
	}
	return err
}

func fromNull(ns sql.NullString) Value {
	if !ns.Valid {
		return Unset()
	}
	return Text(ns.String)
}
