// Package sharepoint pushes registrations and buildings to a SharePoint list
// and document library through Microsoft Graph.
package sharepoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"rtm-portal/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	graphScope = "https://graph.microsoft.com/.default"
	pageSize   = 200
	// tokens are refreshed this long before Graph says they expire
	tokenSkew = 60 * time.Second
)

var timeNow = time.Now

// Error is a non-2xx answer from Graph or the token endpoint.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("graph: status %d", e.Status)
	}
	return fmt.Sprintf("graph: status %d: %s: %s", e.Status, e.Code, e.Message)
}

// errorBody covers both Graph errors, where "error" is an object, and token
// endpoint errors, where it is a string next to error_description.
type errorBody struct {
	Error            json.RawMessage `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type listItem struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type listItemsPage struct {
	Value    []listItem `json:"value"`
	NextLink string     `json:"@odata.nextLink"`
}

type driveItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type driveItemsPage struct {
	Value    []driveItem `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

// Client talks to one SharePoint site, list and drive with app-only
// credentials.
type Client struct {
	graph  *resty.Client
	login  *resty.Client
	cfg    config.SharePointConfig
	logger *zap.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewClient(cfg config.SharePointConfig, logger *zap.Logger) *Client {
	graph := resty.New().
		SetBaseURL(strings.TrimRight(cfg.GraphBaseURL, "/")).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")

	login := resty.New().
		SetBaseURL(strings.TrimRight(cfg.LoginBaseURL, "/")).
		SetTimeout(15 * time.Second)

	return &Client{
		graph:  graph,
		login:  login,
		cfg:    cfg,
		logger: logger,
	}
}

// accessToken returns a cached client-credentials token, fetching a new one
// when the cached token is missing or about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && timeNow().Before(c.expiresAt) {
		return c.token, nil
	}

	var tok tokenResponse
	resp, err := c.login.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     c.cfg.ClientID,
			"client_secret": c.cfg.ClientSecret,
			"scope":         graphScope,
		}).
		SetResult(&tok).
		Post("/" + url.PathEscape(c.cfg.TenantID) + "/oauth2/v2.0/token")
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("request token: %w", responseError(resp))
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("request token: empty access token")
	}

	c.token = tok.AccessToken
	c.expiresAt = timeNow().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSkew)
	c.logger.Debug("graph token refreshed", zap.Time("expires_at", c.expiresAt))
	return c.token, nil
}

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	tok, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.graph.R().SetContext(ctx).SetAuthToken(tok), nil
}

func responseError(resp *resty.Response) error {
	e := &Error{Status: resp.StatusCode()}
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err != nil || len(body.Error) == 0 {
		return e
	}
	var detail struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Error, &detail); err == nil {
		e.Code, e.Message = detail.Code, detail.Message
		return e
	}
	_ = json.Unmarshal(body.Error, &e.Code)
	e.Message = body.ErrorDescription
	return e
}

func (c *Client) listPath() string {
	return fmt.Sprintf("/sites/%s/lists/%s/items", url.PathEscape(c.cfg.SiteID), url.PathEscape(c.cfg.ListID))
}

// folderPath escapes each segment of the configured folder, keeping slashes.
func (c *Client) folderPath(name string) string {
	var parts []string
	for _, p := range strings.Split(strings.Trim(c.cfg.Folder, "/"), "/") {
		if p != "" {
			parts = append(parts, url.PathEscape(p))
		}
	}
	if name != "" {
		parts = append(parts, url.PathEscape(name))
	}
	return strings.Join(parts, "/")
}

// ListItemKeys maps the value of field on every list item to the item id.
func (c *Client) ListItemKeys(ctx context.Context, field string) (map[string]string, error) {
	keys := map[string]string{}
	next := fmt.Sprintf("%s?expand=fields(select=%s)&$top=%d", c.listPath(), url.QueryEscape(field), pageSize)
	for next != "" {
		req, err := c.request(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListItemKeys: %w", err)
		}
		var page listItemsPage
		resp, err := req.SetResult(&page).Get(next)
		if err != nil {
			return nil, fmt.Errorf("ListItemKeys: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("ListItemKeys: %w", responseError(resp))
		}
		for _, item := range page.Value {
			v, ok := item.Fields[field]
			if !ok || v == nil {
				continue
			}
			keys[fmt.Sprint(v)] = item.ID
		}
		next = page.NextLink
	}
	return keys, nil
}

// CreateListItem adds a list item and returns its id.
func (c *Client) CreateListItem(ctx context.Context, fields map[string]any) (string, error) {
	req, err := c.request(ctx)
	if err != nil {
		return "", fmt.Errorf("CreateListItem: %w", err)
	}
	var created listItem
	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"fields": fields}).
		SetResult(&created).
		Post(c.listPath())
	if err != nil {
		return "", fmt.Errorf("CreateListItem: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("CreateListItem: %w", responseError(resp))
	}
	return created.ID, nil
}

// ListDriveFiles returns the names of the files in the configured folder.
// A folder that does not exist yet has no files.
func (c *Client) ListDriveFiles(ctx context.Context) ([]string, error) {
	names := []string{}
	next := fmt.Sprintf("/drives/%s/root/children?$select=id,name&$top=%d", url.PathEscape(c.cfg.DriveID), pageSize)
	if folder := c.folderPath(""); folder != "" {
		next = fmt.Sprintf("/drives/%s/root:/%s:/children?$select=id,name&$top=%d", url.PathEscape(c.cfg.DriveID), folder, pageSize)
	}
	for next != "" {
		req, err := c.request(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListDriveFiles: %w", err)
		}
		var page driveItemsPage
		resp, err := req.SetResult(&page).Get(next)
		if err != nil {
			return nil, fmt.Errorf("ListDriveFiles: %w", err)
		}
		if resp.StatusCode() == http.StatusNotFound {
			return names, nil
		}
		if resp.IsError() {
			return nil, fmt.Errorf("ListDriveFiles: %w", responseError(resp))
		}
		for _, item := range page.Value {
			names = append(names, item.Name)
		}
		next = page.NextLink
	}
	return names, nil
}

// UploadFile creates or replaces name in the configured folder and returns
// the drive item id. Graph's simple upload accepts files up to 4MB.
func (c *Client) UploadFile(ctx context.Context, name string, content []byte) (string, error) {
	req, err := c.request(ctx)
	if err != nil {
		return "", fmt.Errorf("UploadFile: %w", err)
	}
	var item driveItem
	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(content).
		SetResult(&item).
		Put(fmt.Sprintf("/drives/%s/root:/%s:/content", url.PathEscape(c.cfg.DriveID), c.folderPath(name)))
	if err != nil {
		return "", fmt.Errorf("UploadFile: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("UploadFile: %w", responseError(resp))
	}
	return item.ID, nil
}
