package postconfig

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	coredatabase "github.com/m3rciful/postbot/core/database"
	"github.com/m3rciful/postbot/migrations"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: filepath.Join(t.TempDir(), "post.db")}
	db, err := coredatabase.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, coredatabase.RunMigrations(db, cfg.Driver, migrations.FS))

	s := NewSQLStore(db)
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func TestFreshRecordIsUnset(t *testing.T) {
	s := newSQLiteStore(t)
	rec, err := s.GetAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, Record{}, rec)

	v, err := s.Get(context.Background(), FieldMessage)
	require.NoError(t, err)
	require.False(t, v.Valid)
}

func TestSetGetRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	values := map[Field]Value{
		FieldMessage:   Text("Hello world"),
		FieldImagePath: Text("/tmp/cat.png"),
		FieldReaction:  Text("👍 ❤️ 🔥"),
		FieldStartDate: Text("2024-05-01 09:00"),
		FieldFrequency: Text("3"),
		FieldPublished: Bool(true),
	}
	for f, v := range values {
		require.NoError(t, s.Set(ctx, f, v), f.String())
		got, err := s.Get(ctx, f)
		require.NoError(t, err)
		require.Equal(t, v, got, f.String())
	}
}

func TestGetAllReflectsLastWrite(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, FieldReaction, Text("first")))
	require.NoError(t, s.Set(ctx, FieldMessage, Text("a")))
	require.NoError(t, s.Set(ctx, FieldReaction, Text("second")))
	require.NoError(t, s.Set(ctx, FieldMessage, Text("b")))

	rec, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, Text("b"), rec.Message)
	require.Equal(t, Text("second"), rec.Reaction)
	require.False(t, rec.ImagePath.Valid)
	require.False(t, rec.Published)
}

func TestFrequencyStoredVerbatim(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, FieldFrequency, Text("abc")))
	v, err := s.Get(ctx, FieldFrequency)
	require.NoError(t, err)
	require.Equal(t, "abc", v.String())
}

func TestInitializeIsIdempotent(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, FieldMessage, Text("keep me")))
	require.NoError(t, s.Set(ctx, FieldPublished, Bool(true)))

	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Initialize(ctx))

	rec, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, Text("keep me"), rec.Message)
	require.True(t, rec.Published)
}

func TestSetRejectsWrongKind(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	err := s.Set(ctx, FieldPublished, Text("yes"))
	require.True(t, IsInvalidField(err))
	err = s.Set(ctx, FieldMessage, Bool(true))
	require.True(t, IsInvalidField(err))
	err = s.Set(ctx, Field(42), Text("x"))
	require.True(t, IsInvalidField(err))
	_, err = s.Get(ctx, Field(0))
	require.True(t, IsInvalidField(err))
}

func TestSetUnsetClearsTextField(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, FieldImagePath, Text("x")))
	require.NoError(t, s.Set(ctx, FieldImagePath, Unset()))
	v, err := s.Get(ctx, FieldImagePath)
	require.NoError(t, err)
	require.False(t, v.Valid)
}

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSetStorageErrorWrapsCause(t *testing.T) {
	s, mock := newMockStore(t)
	cause := errors.New("disk I/O error")
	mock.ExpectExec(regexp.QuoteMeta(setMessage)).
		WithArgs("hi", sqlmock.AnyArg()).
		WillReturnError(cause)

	err := s.Set(context.Background(), FieldMessage, Text("hi"))
	var se *StorageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "set", se.Op)
	require.Equal(t, FieldMessage, se.Field)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "STORAGE_ERROR", se.Code())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetMissingRecord(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(setPublished)).
		WithArgs(true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Set(context.Background(), FieldPublished, Bool(true))
	require.ErrorIs(t, err, ErrRecordMissing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllStorageError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectRecord)).WillReturnError(errors.New("database is locked"))

	_, err := s.GetAll(context.Background())
	var se *StorageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "get_all", se.Op)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNoRowsIsRecordMissing(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(getMessage)).WillReturnRows(sqlmock.NewRows([]string{"message"}))

	_, err := s.Get(context.Background(), FieldMessage)
	require.ErrorIs(t, err, ErrRecordMissing)
}

func TestParseField(t *testing.T) {
	for _, f := range Fields {
		got, err := ParseField(f.String())
		require.NoError(t, err)
		require.Equal(t, f, got)
	}
	_, err := ParseField("message; DROP TABLE post_config")
	require.True(t, IsInvalidField(err))
	require.Equal(t, "Field(9)", Field(9).String())
}
