package sharepoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"rtm-portal/internal/cache"
	"rtm-portal/internal/config"
	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
	"rtm-portal/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockGraph struct {
	mock.Mock
}

func (m *mockGraph) ListItemKeys(ctx context.Context, field string) (map[string]string, error) {
	args := m.Called(ctx, field)
	keys, _ := args.Get(0).(map[string]string)
	return keys, args.Error(1)
}

func (m *mockGraph) CreateListItem(ctx context.Context, fields map[string]any) (string, error) {
	args := m.Called(ctx, fields)
	return args.String(0), args.Error(1)
}

func (m *mockGraph) ListDriveFiles(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *mockGraph) UploadFile(ctx context.Context, name string, content []byte) (string, error) {
	args := m.Called(ctx, name, content)
	return args.String(0), args.Error(1)
}

type syncFixture struct {
	regs      []model.RegistrationRow
	buildings []store.BuildingRow
	marked    map[int]string
	finished  *model.SyncRun
	sleeps    []time.Duration
}

func setupSync(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{marked: map[int]string{}}

	origRegs, origBuildings, origMark := listAllRegistrations, listAllBuildings, markRegistrationSynced
	origCreate, origFinish, origSleep := createSyncRun, finishSyncRun, sleep
	t.Cleanup(func() {
		listAllRegistrations, listAllBuildings, markRegistrationSynced = origRegs, origBuildings, origMark
		createSyncRun, finishSyncRun, sleep = origCreate, origFinish, origSleep
	})

	listAllRegistrations = func(ctx context.Context, db database.Querier) ([]model.RegistrationRow, error) {
		return f.regs, nil
	}
	listAllBuildings = func(ctx context.Context, db database.Querier) ([]store.BuildingRow, error) {
		return f.buildings, nil
	}
	markRegistrationSynced = func(ctx context.Context, db database.Querier, id int, itemID string) error {
		f.marked[id] = itemID
		return nil
	}
	createSyncRun = func(ctx context.Context, db database.Querier) (*model.SyncRun, error) {
		return &model.SyncRun{ID: 1, StartedAt: time.Now(), Errors: []string{}}, nil
	}
	finishSyncRun = func(ctx context.Context, db database.Querier, r *model.SyncRun) error {
		f.finished = r
		return nil
	}
	sleep = func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return ctx.Err()
	}
	return f
}

func newTestSyncer(g Graph, batch int) *Syncer {
	return NewSyncer(&database.FakeDB{}, g, config.SharePointConfig{
		KeyField:   "RegistrationId",
		BatchSize:  batch,
		BatchDelay: time.Second,
	}, zap.NewNop())
}

func reg(id int) model.RegistrationRow {
	return model.RegistrationRow{Registration: model.Registration{ID: id, BuildingID: "b1"}, UserName: "Jo"}
}

func building(id string) store.BuildingRow {
	return store.BuildingRow{Building: model.Building{ID: id, AddressLine: "1 High Street"}}
}

func TestRunUploadsOnlyMissing(t *testing.T) {
	f := setupSync(t)
	synced := "item-1"
	r1 := reg(1)
	r1.SharePointItemID = &synced
	f.regs = []model.RegistrationRow{r1, reg(2), reg(3)}
	f.buildings = []store.BuildingRow{building("b1"), building("b2")}

	g := &mockGraph{}
	g.On("ListItemKeys", mock.Anything, "RegistrationId").Return(map[string]string{"1": "item-1", "3": "item-3"}, nil)
	g.On("ListDriveFiles", mock.Anything).Return([]string{"b1.json"}, nil)
	g.On("CreateListItem", mock.Anything, mock.MatchedBy(func(fields map[string]any) bool {
		return fields["RegistrationId"] == "2" && fields["Title"] == "Jo"
	})).Return("item-2", nil).Once()
	g.On("UploadFile", mock.Anything, "b2.json", mock.Anything).Return("file-2", nil).Once()

	run, err := newTestSyncer(g, 20).Run(context.Background())
	require.NoError(t, err)
	g.AssertExpectations(t)

	require.Equal(t, 1, run.RegistrationsUploaded)
	require.Equal(t, 1, run.BuildingsUploaded)
	require.Empty(t, run.Errors)
	require.Same(t, run, f.finished)
	// 3 existed remotely without a local mark
	require.Equal(t, map[int]string{2: "item-2", 3: "item-3"}, f.marked)
	require.Empty(t, f.sleeps)
}

func TestRunCollectsItemErrors(t *testing.T) {
	f := setupSync(t)
	f.regs = []model.RegistrationRow{reg(1), reg(2)}
	f.buildings = []store.BuildingRow{building("b1")}

	g := &mockGraph{}
	g.On("ListItemKeys", mock.Anything, "RegistrationId").Return(map[string]string{}, nil)
	g.On("ListDriveFiles", mock.Anything).Return([]string{}, nil)
	g.On("CreateListItem", mock.Anything, mock.MatchedBy(func(fields map[string]any) bool {
		return fields["RegistrationId"] == "1"
	})).Return("", errors.New("throttled"))
	g.On("CreateListItem", mock.Anything, mock.Anything).Return("item-2", nil)
	g.On("UploadFile", mock.Anything, "b1.json", mock.Anything).Return("", &Error{Status: 507, Code: "quotaLimitReached", Message: "full"})

	run, err := newTestSyncer(g, 20).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, run.RegistrationsUploaded)
	require.Equal(t, 0, run.BuildingsUploaded)
	require.Equal(t, []string{
		"registration 1: throttled",
		"building b1: graph: status 507: quotaLimitReached: full",
	}, run.Errors)
	require.Equal(t, map[int]string{2: "item-2"}, f.marked)
}

func TestRunPausesBetweenBatches(t *testing.T) {
	f := setupSync(t)
	for i := 1; i <= 5; i++ {
		f.regs = append(f.regs, reg(i))
	}

	g := &mockGraph{}
	g.On("ListItemKeys", mock.Anything, "RegistrationId").Return(map[string]string{}, nil)
	g.On("ListDriveFiles", mock.Anything).Return([]string{}, nil)
	g.On("CreateListItem", mock.Anything, mock.Anything).Return("item", nil)

	run, err := newTestSyncer(g, 2).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, run.RegistrationsUploaded)
	// pauses after items 2 and 4, none after the last
	require.Equal(t, []time.Duration{time.Second, time.Second}, f.sleeps)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := setupSync(t)
	for i := 1; i <= 4; i++ {
		f.regs = append(f.regs, reg(i))
	}
	ctx, cancel := context.WithCancel(context.Background())
	sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	g := &mockGraph{}
	g.On("ListItemKeys", mock.Anything, "RegistrationId").Return(map[string]string{}, nil)
	g.On("ListDriveFiles", mock.Anything).Return([]string{}, nil)
	g.On("CreateListItem", mock.Anything, mock.Anything).Return("item", nil)

	run, err := newTestSyncer(g, 2).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 2, run.RegistrationsUploaded)
	require.Contains(t, run.Errors, context.Canceled.Error())
	require.NotNil(t, f.finished)
	g.AssertNumberOfCalls(t, "CreateListItem", 2)
}

func TestRunFetchFailure(t *testing.T) {
	f := setupSync(t)
	g := &mockGraph{}
	g.On("ListItemKeys", mock.Anything, "RegistrationId").Return(nil, errors.New("dns"))

	run, err := newTestSyncer(g, 20).Run(context.Background())
	require.EqualError(t, err, "Run: fetch list items: dns")
	require.Equal(t, []string{"fetch list items: dns"}, run.Errors)
	require.NotNil(t, f.finished)
}

func TestRunCreateRunFails(t *testing.T) {
	setupSync(t)
	createSyncRun = func(ctx context.Context, db database.Querier) (*model.SyncRun, error) {
		return nil, errors.New("db down")
	}
	_, err := newTestSyncer(&mockGraph{}, 20).Run(context.Background())
	require.EqualError(t, err, "Run: db down")
}

func TestRunExclusive(t *testing.T) {
	setupSync(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	g := &mockGraph{}
	g.On("ListItemKeys", mock.Anything, "RegistrationId").Return(map[string]string{}, nil)
	g.On("ListDriveFiles", mock.Anything).Return([]string{}, nil)
	s := newTestSyncer(g, 20)

	require.NoError(t, mr.Set(LockKey, "someone"))
	_, err := s.RunExclusive(context.Background(), rdb)
	require.ErrorIs(t, err, cache.ErrLocked)

	mr.Del(LockKey)
	_, err = s.RunExclusive(context.Background(), rdb)
	require.NoError(t, err)
	require.False(t, mr.Exists(LockKey))
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	require.ErrorIs(t, sleepContext(ctx, 0), context.Canceled)
}
