package sharepoint

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"rtm-portal/internal/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type graphServer struct {
	*httptest.Server
	tokenCalls atomic.Int32
	mux        *http.ServeMux
}

func newGraphServer(t *testing.T) *graphServer {
	t.Helper()
	g := &graphServer{mux: http.NewServeMux()}
	g.mux.HandleFunc("/login/tenant-1/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		g.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		require.Equal(t, "client-1", r.Form.Get("client_id"))
		require.Equal(t, graphScope, r.Form.Get("scope"))
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "tok", "expires_in": 3600})
	})
	g.Server = httptest.NewServer(g.mux)
	t.Cleanup(g.Close)
	return g
}

func (g *graphServer) client() *Client {
	return NewClient(config.SharePointConfig{
		TenantID:     "tenant-1",
		ClientID:     "client-1",
		ClientSecret: "secret",
		SiteID:       "site-1",
		ListID:       "list-1",
		DriveID:      "drive-1",
		Folder:       "Buildings",
		KeyField:     "RegistrationId",
		GraphBaseURL: g.URL + "/graph",
		LoginBaseURL: g.URL + "/login",
	}, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()
	require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
}

func TestListItemKeysPaging(t *testing.T) {
	g := newGraphServer(t)
	g.mux.HandleFunc("/graph/sites/site-1/lists/list-1/items", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		if r.URL.Query().Get("page") == "2" {
			writeJSON(w, http.StatusOK, map[string]any{"value": []any{
				map[string]any{"id": "3", "fields": map[string]any{"RegistrationId": 12}},
			}})
			return
		}
		require.Equal(t, "fields(select=RegistrationId)", r.URL.Query().Get("expand"))
		writeJSON(w, http.StatusOK, map[string]any{
			"value": []any{
				map[string]any{"id": "1", "fields": map[string]any{"RegistrationId": "10"}},
				map[string]any{"id": "2", "fields": map[string]any{"Title": "no key"}},
			},
			"@odata.nextLink": g.URL + "/graph/sites/site-1/lists/list-1/items?page=2",
		})
	})

	keys, err := g.client().ListItemKeys(context.Background(), "RegistrationId")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"10": "1", "12": "3"}, keys)
	require.EqualValues(t, 1, g.tokenCalls.Load())
}

func TestCreateListItem(t *testing.T) {
	g := newGraphServer(t)
	g.mux.HandleFunc("/graph/sites/site-1/lists/list-1/items", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		require.Equal(t, http.MethodPost, r.Method)
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "7", body.Fields["RegistrationId"])
		writeJSON(w, http.StatusCreated, map[string]any{"id": "99"})
	})

	id, err := g.client().CreateListItem(context.Background(), map[string]any{"RegistrationId": "7"})
	require.NoError(t, err)
	require.Equal(t, "99", id)
}

func TestGraphErrorDecoded(t *testing.T) {
	g := newGraphServer(t)
	g.mux.HandleFunc("/graph/sites/site-1/lists/list-1/items", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": map[string]any{"code": "accessDenied", "message": "nope"},
		})
	})

	_, err := g.client().CreateListItem(context.Background(), map[string]any{})
	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, http.StatusForbidden, gerr.Status)
	require.Equal(t, "accessDenied", gerr.Code)
	require.EqualError(t, err, "CreateListItem: graph: status 403: accessDenied: nope")
}

func TestTokenErrorDecoded(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/tenant-1/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": "invalid_client", "error_description": "bad secret",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(config.SharePointConfig{
		TenantID: "tenant-1", GraphBaseURL: srv.URL + "/graph", LoginBaseURL: srv.URL + "/login",
	}, zap.NewNop())
	_, err := c.ListDriveFiles(context.Background())
	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, "invalid_client", gerr.Code)
	require.Equal(t, "bad secret", gerr.Message)
}

func TestTokenCachedUntilNearExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = time.Now })

	g := newGraphServer(t)
	c := g.client()

	_, err := c.accessToken(context.Background())
	require.NoError(t, err)
	now = now.Add(58 * time.Minute)
	_, err = c.accessToken(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, g.tokenCalls.Load())

	now = now.Add(90 * time.Second)
	_, err = c.accessToken(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, g.tokenCalls.Load())
}

func TestListDriveFiles(t *testing.T) {
	g := newGraphServer(t)
	g.mux.HandleFunc("/graph/drives/drive-1/root:/Buildings:/children", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		writeJSON(w, http.StatusOK, map[string]any{"value": []any{
			map[string]any{"id": "a", "name": "b1.json"},
			map[string]any{"id": "b", "name": "b2.json"},
		}})
	})

	names, err := g.client().ListDriveFiles(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"b1.json", "b2.json"}, names)
}

func TestListDriveFilesMissingFolder(t *testing.T) {
	g := newGraphServer(t)
	g.mux.HandleFunc("/graph/drives/drive-1/root:/Buildings:/children", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"code": "itemNotFound"}})
	})

	names, err := g.client().ListDriveFiles(context.Background())
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestUploadFile(t *testing.T) {
	g := newGraphServer(t)
	g.mux.HandleFunc("/graph/drives/drive-1/root:/Buildings/b1.json:/content", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		require.Equal(t, http.MethodPut, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"id":"b1"}`, string(body))
		writeJSON(w, http.StatusCreated, map[string]any{"id": "file-1", "name": "b1.json"})
	})

	id, err := g.client().UploadFile(context.Background(), "b1.json", []byte(`{"id":"b1"}`))
	require.NoError(t, err)
	require.Equal(t, "file-1", id)
}

func TestFolderPath(t *testing.T) {
	c := &Client{cfg: config.SharePointConfig{Folder: "/RTM/Building Files/"}}
	require.Equal(t, "RTM/Building%20Files/x.json", c.folderPath("x.json"))
	c.cfg.Folder = ""
	require.Equal(t, "x.json", c.folderPath("x.json"))
	require.Equal(t, "", c.folderPath(""))
}
