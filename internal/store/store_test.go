package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/fospace/api/schemas"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace for more robust SQL mock testing.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

// ArgumentMatcherFunc is a helper to create inline mock matchers.
type ArgumentMatcherFunc func(interface{}) bool

func (f ArgumentMatcherFunc) Match(v interface{}) bool {
	return f(v)
}

// anyValue accepts anything; used for timestamps and encoded atoms.
var anyValue = ArgumentMatcherFunc(func(v interface{}) bool {
	return true
})

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	mockPool.ExpectPing()
	s, err := New(context.Background(), mockPool, zap.NewNop())
	require.NoError(t, err)
	return s, mockPool
}

func sampleResult() *schemas.SectionResult {
	return &schemas.SectionResult{
		RunID:     "run-1",
		SectionID: "s1",
		Resolved: []schemas.AtomSpec{
			{Type: schemas.ElementBox, Width: 1000},
			{Type: schemas.ElementPenalty, Value: -1000, BreakClass: "page"},
		},
		Notifications: []schemas.NotificationRecord{
			{Element: "sb", Kind: "space", Side: schemas.SideBefore, Outcome: "before-break"},
			{Element: "b1", Kind: "border", Side: schemas.SideAfter, Outcome: "after-break",
				Effective: &schemas.Length{Min: 500, Opt: 500, Max: 500}},
		},
		Groups:     1,
		Duration:   1500 * time.Microsecond,
		ResolvedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// -- Test Cases --

func TestNewStore(t *testing.T) {
	t.Run("should return error if ping fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		pingErr := errors.New("database unavailable")
		mockPool.ExpectPing().WillReturnError(pingErr)

		_, err = New(context.Background(), mockPool, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, pingErr, "Error from ping should be propagated")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestMigrate(t *testing.T) {
	s, mockPool := newMockStore(t)

	mockPool.ExpectExec(`CREATE TABLE IF NOT EXISTS section_results`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPersistResult(t *testing.T) {
	ctx := context.Background()

	t.Run("should insert the result and copy notifications", func(t *testing.T) {
		s, mockPool := newMockStore(t)
		res := sampleResult()

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertResult)).
			WithArgs(res.RunID, res.SectionID, res.Groups, anyValue, int64(1500), anyValue).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCopyFrom(pgx.Identifier{"notifications"}, notificationColumns).
			WillReturnResult(2)
		mockPool.ExpectCommit()

		require.NoError(t, s.PersistResult(ctx, res))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should skip the copy when nothing was notified", func(t *testing.T) {
		s, mockPool := newMockStore(t)
		res := sampleResult()
		res.Notifications = nil

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertResult)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCommit()

		require.NoError(t, s.PersistResult(ctx, res))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should roll back when the copy fails", func(t *testing.T) {
		s, mockPool := newMockStore(t)
		copyErr := errors.New("copy failed")

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertResult)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCopyFrom(pgx.Identifier{"notifications"}, notificationColumns).
			WillReturnError(copyErr)
		mockPool.ExpectRollback()

		err := s.PersistResult(ctx, sampleResult())
		assert.ErrorIs(t, err, copyErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should report a short copy", func(t *testing.T) {
		s, mockPool := newMockStore(t)

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertResult)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCopyFrom(pgx.Identifier{"notifications"}, notificationColumns).
			WillReturnResult(1)
		mockPool.ExpectRollback()

		err := s.PersistResult(ctx, sampleResult())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mismatch in copied notifications count")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should log a failed rollback", func(t *testing.T) {
		s, mockPool := newMockStore(t)
		core, logs := observer.New(zapcore.ErrorLevel)
		s.log = zap.New(core)
		insertErr := errors.New("insert failed")

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertResult)).WillReturnError(insertErr)
		mockPool.ExpectRollback().WillReturnError(errors.New("connection reset"))

		err := s.PersistResult(ctx, sampleResult())
		assert.ErrorIs(t, err, insertErr)
		assert.Equal(t, 1, logs.FilterMessage("Failed to rollback transaction").Len())
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should fail when the transaction cannot begin", func(t *testing.T) {
		s, mockPool := newMockStore(t)
		mockPool.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		err := s.PersistResult(ctx, sampleResult())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestGetNotifications(t *testing.T) {
	s, mockPool := newMockStore(t)
	lo, opt, hi := int64(500), int64(500), int64(500)
	var none *int64

	rows := pgxmock.NewRows([]string{"element", "kind", "side", "outcome", "eff_min", "eff_opt", "eff_max"}).
		AddRow("sb", "space", "before", "before-break", none, none, none).
		AddRow("b1", "border", "after", "after-break", &lo, &opt, &hi)
	mockPool.ExpectQuery(`SELECT element, kind, side, outcome`).
		WithArgs("run-1", "s1").
		WillReturnRows(rows)

	records, err := s.GetNotifications(context.Background(), "run-1", "s1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Nil(t, records[0].Effective)
	assert.Equal(t, &schemas.Length{Min: 500, Opt: 500, Max: 500}, records[1].Effective)
	assert.Equal(t, "after-break", records[1].Outcome)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestResultAge(t *testing.T) {
	t.Run("should measure from resolved_at", func(t *testing.T) {
		s, mockPool := newMockStore(t)
		resolvedAt := time.Now().Add(-time.Hour)
		mockPool.ExpectQuery(`SELECT resolved_at FROM section_results`).
			WithArgs("run-1", "s1").
			WillReturnRows(pgxmock.NewRows([]string{"resolved_at"}).AddRow(resolvedAt))

		age, err := s.ResultAge(context.Background(), "run-1", "s1")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, age, time.Hour)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should return ErrNoRows for an unknown section", func(t *testing.T) {
		s, mockPool := newMockStore(t)
		mockPool.ExpectQuery(`SELECT resolved_at FROM section_results`).
			WithArgs("run-1", "missing").
			WillReturnRows(pgxmock.NewRows([]string{"resolved_at"}))

		_, err := s.ResultAge(context.Background(), "run-1", "missing")
		assert.ErrorIs(t, err, pgx.ErrNoRows)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
