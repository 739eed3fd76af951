package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/printwatch/internal/store"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background(), "alerts", Migrations()))

	s := NewStore(db.DB())
	var mu sync.Mutex
	clock := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func connectionAlert(deviceID string) *Alert {
	return &Alert{
		DeviceID:   deviceID,
		DeviceName: "printer " + deviceID,
		Kind:       KindConnection,
		Severity:   SeverityHigh,
		Message:    "Printer is offline or unreachable",
	}
}

func TestCreate_SingleOpenAlertPerDevice(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := connectionAlert("dev-1")
	require.NoError(t, s.Create(ctx, first))
	assert.NotEmpty(t, first.ID)

	err := s.Create(ctx, connectionAlert("dev-1"))
	assert.True(t, errors.Is(err, ErrActiveAlertExists), "got %v", err)

	require.NoError(t, s.Create(ctx, connectionAlert("dev-2")), "other devices are independent")

	ok, err := s.Acknowledge(ctx, first.ID, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.Create(ctx, connectionAlert("dev-1")), "new alert allowed after acknowledgement")
}

func TestActiveForDevice(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	got, err := s.ActiveForDevice(ctx, "dev-1", KindConnection)
	require.NoError(t, err)
	assert.Nil(t, got)

	a := connectionAlert("dev-1")
	require.NoError(t, s.Create(ctx, a))

	got, err = s.ActiveForDevice(ctx, "dev-1", KindConnection)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "Printer is offline or unreachable", got.Message)
	assert.False(t, got.Acknowledged)
}

func TestListUnacknowledged_NewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var ids []string
	for _, dev := range []string{"a", "b", "c"} {
		al := connectionAlert(dev)
		require.NoError(t, s.Create(ctx, al))
		ids = append(ids, al.ID)
	}
	_, err := s.Acknowledge(ctx, ids[1], "ops")
	require.NoError(t, err)

	open, err := s.ListUnacknowledged(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, ids[2], open[0].ID)
	assert.Equal(t, ids[0], open[1].ID)
}

func TestAcknowledge_Idempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := connectionAlert("dev-1")
	require.NoError(t, s.Create(ctx, a))

	ok, err := s.Acknowledge(ctx, a.ID, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	first, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, first.AcknowledgedAt)

	ok, err = s.Acknowledge(ctx, a.ID, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	second, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, second.Acknowledged)
	assert.True(t, first.AcknowledgedAt.Equal(*second.AcknowledgedAt), "acknowledged_at must not move")
	assert.Equal(t, "alice", second.AcknowledgedBy)
}

func TestAcknowledge_UnknownID(t *testing.T) {
	s := testStore(t)
	ok, err := s.Acknowledge(context.Background(), "missing", "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAcknowledgeAll(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, dev := range []string{"a", "b", "c"} {
		require.NoError(t, s.Create(ctx, connectionAlert(dev)))
	}

	n, err := s.AcknowledgeAll(ctx, "system")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	open, err := s.ListUnacknowledged(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	n, err = s.AcknowledgeAll(ctx, "system")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestListForDevice(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		a := connectionAlert("dev-1")
		require.NoError(t, s.Create(ctx, a))
		_, err := s.Acknowledge(ctx, a.ID, "ops")
		require.NoError(t, err)
	}
	require.NoError(t, s.Create(ctx, connectionAlert("dev-2")))

	got, err := s.ListForDevice(ctx, "dev-1", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, "dev-1", a.DeviceID)
	}
}

func TestDeleteAcknowledgedBefore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	old := connectionAlert("dev-1")
	require.NoError(t, s.Create(ctx, old))
	_, err := s.Acknowledge(ctx, old.ID, "ops")
	require.NoError(t, err)
	open := connectionAlert("dev-2")
	require.NoError(t, s.Create(ctx, open))

	n, err := s.DeleteAcknowledgedBefore(ctx, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.Get(ctx, open.ID)
	require.NoError(t, err)
	assert.NotNil(t, got, "open alerts are retained")
}
