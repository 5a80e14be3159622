package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"rtm-portal/internal/api"
	"rtm-portal/internal/cache"
	"rtm-portal/internal/database"
	"rtm-portal/internal/export"
	"rtm-portal/internal/model"
	"rtm-portal/internal/sharepoint"
	"rtm-portal/internal/store"
	"rtm-portal/internal/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type stubValidator struct{ err error }

func (s *stubValidator) Validate(i interface{}) error { return s.err }

func restore() {
	listRegistrations = store.ListRegistrations
	listBuildings = store.ListBuildings
	listCases = store.ListCases
	listEligibilityChecks = store.ListEligibilityChecks
	listUsers = store.ListUsers
	listAllRegistrations = store.ListAllRegistrations
	listAllBuildings = store.ListAllBuildings
	getStats = store.GetStats
	updateRegistrationStatus = store.UpdateRegistrationStatus
	getRegistration = store.GetRegistration
	getBuilding = store.GetBuilding
	createCase = store.CreateCase
	getCase = store.GetCase
	updateCaseStatus = store.UpdateCaseStatus
	latestSyncRun = store.LatestSyncRun
	lock = cache.Lock
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &stubValidator{}
	return e
}

func newCtx(e *echo.Echo, method, target string, form url.Values, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	var body string
	if form != nil {
		body = form.Encode()
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	return c, rec
}

func newRedis(t *testing.T) (*miniredis.Miniredis, cache.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestListHandlers(t *testing.T) {
	e := newEcho()

	t.Run("params", func(t *testing.T) {
		t.Cleanup(restore)
		var got store.ListParams
		listRegistrations = func(_ context.Context, _ database.Querier, p store.ListParams) (*store.Page[model.RegistrationRow], error) {
			got = p
			return &store.Page[model.RegistrationRow]{Items: []model.RegistrationRow{{UserName: "Jo"}}, Total: 1, Page: p.Page, PageSize: p.PageSize}, nil
		}
		ctx, rec := newCtx(e, http.MethodGet, "/api/admin/registrations?page=2&page_size=50&q=high&sort=email&order=asc", nil)
		require.NoError(t, ListRegistrationsHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, store.ListParams{Page: 2, PageSize: 50, Query: "high", Sort: "email", Order: "asc"}, got)

		var page store.Page[model.RegistrationRow]
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		require.Equal(t, 1, page.Total)
		require.Equal(t, "Jo", page.Items[0].UserName)
	})

	t.Run("bad page", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newCtx(e, http.MethodGet, "/api/admin/users?page=two", nil)
		require.NoError(t, ListUsersHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store error", func(t *testing.T) {
		t.Cleanup(restore)
		listBuildings = func(context.Context, database.Querier, store.ListParams) (*store.Page[store.BuildingRow], error) {
			return nil, errors.New("boom")
		}
		ctx, rec := newCtx(e, http.MethodGet, "/api/admin/buildings", nil)
		require.NoError(t, ListBuildingsHandler(nil)(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("each table", func(t *testing.T) {
		t.Cleanup(restore)
		listCases = func(context.Context, database.Querier, store.ListParams) (*store.Page[model.Case], error) {
			return &store.Page[model.Case]{Items: []model.Case{}}, nil
		}
		listEligibilityChecks = func(context.Context, database.Querier, store.ListParams) (*store.Page[model.EligibilityCheck], error) {
			return &store.Page[model.EligibilityCheck]{Items: []model.EligibilityCheck{}}, nil
		}
		for _, h := range []echo.HandlerFunc{ListCasesHandler(nil), ListEligibilityChecksHandler(nil)} {
			ctx, rec := newCtx(e, http.MethodGet, "/", nil)
			require.NoError(t, h(ctx))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestExportHandler(t *testing.T) {
	e := newEcho()

	t.Run("unknown table", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newCtx(e, http.MethodGet, "/api/admin/export/secrets", nil, "table", "secrets")
		require.NoError(t, ExportHandler(nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("store error", func(t *testing.T) {
		t.Cleanup(restore)
		listAllRegistrations = func(context.Context, database.Querier) ([]model.RegistrationRow, error) {
			return nil, errors.New("boom")
		}
		ctx, rec := newCtx(e, http.MethodGet, "/api/admin/export/registrations", nil, "table", "registrations")
		require.NoError(t, ExportHandler(nil)(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("pages through cases", func(t *testing.T) {
		t.Cleanup(restore)
		var pages []int
		listCases = func(_ context.Context, _ database.Querier, p store.ListParams) (*store.Page[model.Case], error) {
			pages = append(pages, p.Page)
			require.Equal(t, store.MaxPageSize, p.PageSize)
			items := make([]model.Case, 0, store.MaxPageSize)
			n := store.MaxPageSize
			if p.Page == 2 {
				n = 3
			}
			for i := 0; i < n; i++ {
				items = append(items, model.Case{ID: (p.Page-1)*store.MaxPageSize + i + 1, Kind: model.CaseKindRTM, Status: model.CaseOpen})
			}
			return &store.Page[model.Case]{Items: items, Total: store.MaxPageSize + 3, Page: p.Page, PageSize: p.PageSize}, nil
		}
		ctx, rec := newCtx(e, http.MethodGet, "/api/admin/export/cases", nil, "table", "cases")
		require.NoError(t, ExportHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, []int{1, 2}, pages)
		require.Equal(t, export.ContentType, rec.Header().Get(echo.HeaderContentType))
		require.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `filename="cases.xlsx"`)

		f, err := excelize.OpenReader(rec.Body)
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.Close() })
		rows, err := f.GetRows("Cases")
		require.NoError(t, err)
		require.Len(t, rows, store.MaxPageSize+3+1)
	})

	t.Run("buildings", func(t *testing.T) {
		t.Cleanup(restore)
		listAllBuildings = func(context.Context, database.Querier) ([]store.BuildingRow, error) {
			return []store.BuildingRow{{Building: model.Building{ID: "b1", AddressLine: "1 High St"}, Registrations: 2}}, nil
		}
		ctx, rec := newCtx(e, http.MethodGet, "/api/admin/export/buildings", nil, "table", "buildings")
		require.NoError(t, ExportHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotZero(t, rec.Body.Len())
	})
}

func TestStatsHandler(t *testing.T) {
	t.Cleanup(restore)
	e := newEcho()
	mr, c := newRedis(t)

	calls := 0
	getStats = func(context.Context, database.Querier) (*model.Stats, error) {
		calls++
		return &model.Stats{Users: 4, Registrations: 3}, nil
	}

	ctx, rec := newCtx(e, http.MethodGet, "/api/admin/stats", nil)
	require.NoError(t, StatsHandler(nil, c)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Cached)
	require.Equal(t, 4, resp.Stats.Users)
	require.True(t, mr.Exists(statsKey))
	require.Equal(t, statsTTL, mr.TTL(statsKey))

	ctx, rec = newCtx(e, http.MethodGet, "/api/admin/stats", nil)
	require.NoError(t, StatsHandler(nil, c)(ctx))
	resp = api.StatsResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Cached)
	require.Equal(t, 3, resp.Stats.Registrations)
	require.Equal(t, 1, calls)

	mr.FastForward(statsTTL + time.Second)
	ctx, _ = newCtx(e, http.MethodGet, "/api/admin/stats", nil)
	require.NoError(t, StatsHandler(nil, c)(ctx))
	require.Equal(t, 2, calls)
}

func TestStatsHandlerCacheDown(t *testing.T) {
	t.Cleanup(restore)
	e := newEcho()
	fc := &cache.FakeCache{
		GetFn: func(ctx context.Context, key string) *redis.StringCmd {
			return redis.NewStringResult("", errors.New("connection refused"))
		},
		SetFn: func(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
			return redis.NewStatusResult("", errors.New("connection refused"))
		},
	}
	getStats = func(context.Context, database.Querier) (*model.Stats, error) {
		return &model.Stats{Buildings: 2}, nil
	}
	ctx, rec := newCtx(e, http.MethodGet, "/api/admin/stats", nil)
	require.NoError(t, StatsHandler(nil, fc)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)

	getStats = func(context.Context, database.Querier) (*model.Stats, error) {
		return nil, errors.New("boom")
	}
	ctx, rec = newCtx(e, http.MethodGet, "/api/admin/stats", nil)
	require.NoError(t, StatsHandler(nil, fc)(ctx))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUpdateRegistrationStatusHandler(t *testing.T) {
	e := newEcho()

	t.Run("bad id", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newCtx(e, http.MethodPatch, "/", url.Values{"status": {"verified"}}, "id", "abc")
		require.NoError(t, UpdateRegistrationStatusHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newCtx(e, http.MethodPatch, "/", url.Values{"status": {"approved"}}, "id", "3")
		require.NoError(t, UpdateRegistrationStatusHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "status must be one of")
	})

	t.Run("not found", func(t *testing.T) {
		t.Cleanup(restore)
		updateRegistrationStatus = func(context.Context, database.Querier, int, string) error {
			return fmt.Errorf("UpdateRegistrationStatus: %w", store.ErrNotFound)
		}
		ctx, rec := newCtx(e, http.MethodPatch, "/", url.Values{"status": {"verified"}}, "id", "3")
		require.NoError(t, UpdateRegistrationStatusHandler(nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		t.Cleanup(restore)
		var gotStatus string
		updateRegistrationStatus = func(_ context.Context, _ database.Querier, id int, status string) error {
			require.Equal(t, 3, id)
			gotStatus = status
			return nil
		}
		getRegistration = func(_ context.Context, _ database.Querier, id int) (*model.RegistrationRow, error) {
			return &model.RegistrationRow{Registration: model.Registration{ID: id, Status: gotStatus}}, nil
		}
		ctx, rec := newCtx(e, http.MethodPatch, "/", url.Values{"status": {"verified"}}, "id", "3")
		require.NoError(t, UpdateRegistrationStatusHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"status":"verified"`)
	})
}

func TestCreateCaseHandler(t *testing.T) {
	e := newEcho()
	form := url.Values{"building_id": {"b1"}, "kind": {"rtm"}, "notes": {"first meeting"}}

	t.Run("validation error", func(t *testing.T) {
		t.Cleanup(restore)
		ve := newEcho()
		ve.Validator = &stubValidator{err: errors.New("kind invalid")}
		ctx, rec := newCtx(ve, http.MethodPost, "/", form)
		require.NoError(t, CreateCaseHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown building", func(t *testing.T) {
		t.Cleanup(restore)
		getBuilding = func(context.Context, database.Querier, string) (*model.Building, error) {
			return nil, store.ErrNotFound
		}
		ctx, rec := newCtx(e, http.MethodPost, "/", form)
		require.NoError(t, CreateCaseHandler(nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		t.Cleanup(restore)
		getBuilding = func(_ context.Context, _ database.Querier, id string) (*model.Building, error) {
			return &model.Building{ID: id}, nil
		}
		createCase = func(_ context.Context, _ database.Querier, c *model.Case) error {
			c.ID = 11
			c.Status = model.CaseOpen
			return nil
		}
		ctx, rec := newCtx(e, http.MethodPost, "/", form)
		require.NoError(t, CreateCaseHandler(nil)(ctx))
		require.Equal(t, http.StatusCreated, rec.Code)

		var cs model.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cs))
		require.Equal(t, 11, cs.ID)
		require.Equal(t, "b1", cs.BuildingID)
		require.Equal(t, "first meeting", cs.Notes)
	})
}

func TestGetCaseHandler(t *testing.T) {
	e := newEcho()

	t.Run("bad id", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newCtx(e, http.MethodGet, "/", nil, "id", "0")
		require.NoError(t, GetCaseHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Cleanup(restore)
		getCase = func(context.Context, database.Querier, int) (*model.Case, error) {
			return nil, fmt.Errorf("GetCase: %w", store.ErrNotFound)
		}
		ctx, rec := newCtx(e, http.MethodGet, "/", nil, "id", "8")
		require.NoError(t, GetCaseHandler(nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		t.Cleanup(restore)
		getCase = func(_ context.Context, _ database.Querier, id int) (*model.Case, error) {
			return &model.Case{ID: id, Kind: model.CaseKindEnfranchisement, Status: model.CaseInProgress}, nil
		}
		ctx, rec := newCtx(e, http.MethodGet, "/", nil, "id", "8")
		require.NoError(t, GetCaseHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"kind":"enfranchisement"`)
	})
}

func TestUpdateCaseStatusHandler(t *testing.T) {
	e := newEcho()

	t.Run("unknown status", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newCtx(e, http.MethodPatch, "/", url.Values{"status": {"verified"}}, "id", "2")
		require.NoError(t, UpdateCaseStatusHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Cleanup(restore)
		updateCaseStatus = func(context.Context, database.Querier, int, string, string) (*model.Case, error) {
			return nil, store.ErrNotFound
		}
		ctx, rec := newCtx(e, http.MethodPatch, "/", url.Values{"status": {"closed"}}, "id", "2")
		require.NoError(t, UpdateCaseStatusHandler(nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		t.Cleanup(restore)
		updateCaseStatus = func(_ context.Context, _ database.Querier, id int, status, notes string) (*model.Case, error) {
			return &model.Case{ID: id, Status: status, Notes: notes}, nil
		}
		ctx, rec := newCtx(e, http.MethodPatch, "/", url.Values{"status": {"submitted"}, "notes": {"claim notice served"}}, "id", "2")
		require.NoError(t, UpdateCaseStatusHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)

		var cs model.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cs))
		require.Equal(t, model.CaseSubmitted, cs.Status)
		require.Equal(t, "claim notice served", cs.Notes)
	})
}

type fakeSyncer struct {
	runFn       func(ctx context.Context) (*model.SyncRun, error)
	exclusiveFn func(ctx context.Context, c cache.Cache) (*model.SyncRun, error)
}

func (f *fakeSyncer) Run(ctx context.Context) (*model.SyncRun, error) { return f.runFn(ctx) }

func (f *fakeSyncer) RunExclusive(ctx context.Context, c cache.Cache) (*model.SyncRun, error) {
	return f.exclusiveFn(ctx, c)
}

// inlinePool runs submitted tasks on the calling goroutine.
type inlinePool struct{ err error }

func (p *inlinePool) Submit(task worker.Task) error {
	if p.err != nil {
		return p.err
	}
	task(context.Background())
	return nil
}

func (p *inlinePool) Stop() {}

func TestSyncHandler(t *testing.T) {
	e := newEcho()
	logger := zap.NewNop()

	t.Run("not configured", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newCtx(e, http.MethodPost, "/api/admin/sharepoint/sync", nil)
		require.NoError(t, SyncHandler(nil, nil, nil, logger)(ctx))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("already running", func(t *testing.T) {
		t.Cleanup(restore)
		mr, c := newRedis(t)
		require.NoError(t, mr.Set(sharepoint.LockKey, "x"))
		ctx, rec := newCtx(e, http.MethodPost, "/api/admin/sharepoint/sync", nil)
		require.NoError(t, SyncHandler(&fakeSyncer{}, c, &inlinePool{}, logger)(ctx))
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("background", func(t *testing.T) {
		t.Cleanup(restore)
		mr, c := newRedis(t)
		ran := false
		s := &fakeSyncer{runFn: func(context.Context) (*model.SyncRun, error) {
			ran = true
			require.True(t, mr.Exists(sharepoint.LockKey))
			return &model.SyncRun{ID: 1}, nil
		}}
		ctx, rec := newCtx(e, http.MethodPost, "/api/admin/sharepoint/sync", nil)
		require.NoError(t, SyncHandler(s, c, &inlinePool{}, logger)(ctx))
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.True(t, ran)
		require.False(t, mr.Exists(sharepoint.LockKey))
	})

	t.Run("queue full releases lock", func(t *testing.T) {
		t.Cleanup(restore)
		mr, c := newRedis(t)
		ctx, rec := newCtx(e, http.MethodPost, "/api/admin/sharepoint/sync", nil)
		require.NoError(t, SyncHandler(&fakeSyncer{}, c, &inlinePool{err: worker.ErrQueueFull}, logger)(ctx))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.False(t, mr.Exists(sharepoint.LockKey))
	})

	t.Run("lock error", func(t *testing.T) {
		t.Cleanup(restore)
		lock = func(context.Context, cache.Cache, string, time.Duration) (func(context.Context) error, error) {
			return nil, errors.New("redis down")
		}
		ctx, rec := newCtx(e, http.MethodPost, "/api/admin/sharepoint/sync", nil)
		require.NoError(t, SyncHandler(&fakeSyncer{}, nil, &inlinePool{}, logger)(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("wait", func(t *testing.T) {
		t.Cleanup(restore)
		s := &fakeSyncer{exclusiveFn: func(context.Context, cache.Cache) (*model.SyncRun, error) {
			return &model.SyncRun{ID: 4, RegistrationsUploaded: 2, Errors: []string{"building b1: 500"}}, nil
		}}
		ctx, rec := newCtx(e, http.MethodPost, "/api/admin/sharepoint/sync?wait=true", nil)
		require.NoError(t, SyncHandler(s, nil, nil, logger)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.SyncResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.Success)
		require.Equal(t, 2, resp.Run.RegistrationsUploaded)
		require.Len(t, resp.Run.Errors, 1)
	})

	t.Run("wait locked", func(t *testing.T) {
		t.Cleanup(restore)
		s := &fakeSyncer{exclusiveFn: func(context.Context, cache.Cache) (*model.SyncRun, error) {
			return nil, cache.ErrLocked
		}}
		ctx, rec := newCtx(e, http.MethodPost, "/api/admin/sharepoint/sync?wait=true", nil)
		require.NoError(t, SyncHandler(s, nil, nil, logger)(ctx))
		require.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestLatestSyncHandler(t *testing.T) {
	e := newEcho()

	t.Run("none", func(t *testing.T) {
		t.Cleanup(restore)
		latestSyncRun = func(context.Context, database.Querier) (*model.SyncRun, error) {
			return nil, store.ErrNotFound
		}
		ctx, rec := newCtx(e, http.MethodGet, "/", nil)
		require.NoError(t, LatestSyncHandler(nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		t.Cleanup(restore)
		latestSyncRun = func(context.Context, database.Querier) (*model.SyncRun, error) {
			return &model.SyncRun{ID: 9, BuildingsUploaded: 1}, nil
		}
		ctx, rec := newCtx(e, http.MethodGet, "/", nil)
		require.NoError(t, LatestSyncHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"buildings_uploaded":1`)
	})
}
