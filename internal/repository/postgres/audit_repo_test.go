package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/and161185/shopfloor/internal/model"
	"github.com/gofrs/uuid/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func TestAuditRepo_Append(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAuditRepo(db)
	ev := model.AuditEvent{
		ID: uuid.Must(uuid.NewV7()), Username: "alice", Kind: model.AuditLoginFailed,
		Detail: "wrong password", CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO audit_events`).
		WithArgs(ev.ID, "alice", "LOGIN_FAILED", false, "wrong password", ev.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Append(context.Background(), ev))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_ListByUsername_DefaultLimit(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAuditRepo(db)
	now := time.Now().UTC()
	id := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(`FROM audit_events WHERE \(\$1::text = '' OR username = \$1\) ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("alice", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "kind", "success", "detail", "created_at"}).
			AddRow(id, "alice", "LOGIN_SUCCESS", true, "", now))
	out, err := r.ListByUsername(context.Background(), "alice", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, model.AuditLoginSuccess, out[0].Kind)
	require.True(t, out[0].Success)
	require.NoError(t, mock.ExpectationsWereMet())
}
