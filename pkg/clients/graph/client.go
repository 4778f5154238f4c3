package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mbodj/packhouse/internal/config"
)

// Client talks to Microsoft Graph with client-credentials auth. Tokens and
// resolved site/list ids are cached for the lifetime of the client.
type Client struct {
	httpClient *resty.Client
	cfg        config.GraphConfig

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
	siteID      string
	listIDs     map[string]string
}

// NewClient builds a Graph API client from the provided configuration values.
func NewClient(cfg config.GraphConfig) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.GraphBaseURL, "/") + "/v1.0").
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{
		httpClient: restyClient,
		cfg:        cfg,
		listIDs:    make(map[string]string),
	}
}

// ListItem is one SharePoint list item with its field values expanded.
type ListItem struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type siteResponse struct {
	ID string `json:"id"`
}

type listCollection struct {
	Value []struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"value"`
}

type itemsPage struct {
	Value    []ListItem `json:"value"`
	NextLink string     `json:"@odata.nextLink"`
}

// apiError represents a Graph API error payload.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AppendListItem creates a new item in the named list.
func (c *Client) AppendListItem(ctx context.Context, listName string, fields map[string]any) error {
	siteID, listID, err := c.resolve(ctx, listName)
	if err != nil {
		return err
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetBody(map[string]any{"fields": fields}).
		SetError(apiErr).
		Post(fmt.Sprintf("/sites/%s/lists/%s/items", siteID, listID))
	if err != nil {
		return fmt.Errorf("create list item: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("graph api error: status=%d code=%s message=%s", resp.StatusCode(), apiErr.Error.Code, apiErr.Error.Message)
	}
	return nil
}

// ListItems reads every item of the named list, following paging links.
func (c *Client) ListItems(ctx context.Context, listName string) ([]ListItem, error) {
	siteID, listID, err := c.resolve(ctx, listName)
	if err != nil {
		return nil, err
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0)
	next := fmt.Sprintf("/sites/%s/lists/%s/items?%s", siteID, listID, url.Values{
		"$expand": []string{"fields"},
		"$top":    []string{"200"},
	}.Encode())

	for next != "" {
		page := new(itemsPage)
		apiErr := new(apiError)
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+token).
			SetResult(page).
			SetError(apiErr).
			Get(next)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		if resp.StatusCode() >= http.StatusBadRequest {
			return nil, fmt.Errorf("graph api error: status=%d code=%s message=%s", resp.StatusCode(), apiErr.Error.Code, apiErr.Error.Message)
		}

		items = append(items, page.Value...)
		next = page.NextLink
	}

	return items, nil
}

// token returns a cached access token, refreshing it when less than a minute
// of validity remains.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.accessToken, nil
	}

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimSuffix(c.cfg.LoginBaseURL, "/"), c.cfg.TenantID)

	result := new(tokenResponse)
	resp, err := resty.New().SetTimeout(30*time.Second).R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     c.cfg.ClientID,
			"client_secret": c.cfg.ClientSecret,
			"grant_type":    "client_credentials",
			"scope":         strings.TrimSuffix(c.cfg.GraphBaseURL, "/") + "/.default",
		}).
		SetResult(result).
		Post(tokenURL)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("token request failed: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access token")
	}

	expiresIn := result.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	return c.accessToken, nil
}

// resolve looks up (and caches) the site id and the named list's id.
func (c *Client) resolve(ctx context.Context, listName string) (string, string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", "", err
	}

	c.mu.Lock()
	siteID := c.siteID
	listID := c.listIDs[listName]
	c.mu.Unlock()

	if siteID == "" {
		site := new(siteResponse)
		apiErr := new(apiError)
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+token).
			SetResult(site).
			SetError(apiErr).
			Get(fmt.Sprintf("/sites/%s:%s", c.cfg.SiteHost, c.cfg.SitePath))
		if err != nil {
			return "", "", fmt.Errorf("get site: %w", err)
		}
		if resp.StatusCode() != http.StatusOK || site.ID == "" {
			return "", "", fmt.Errorf("get site failed: status=%d code=%s message=%s", resp.StatusCode(), apiErr.Error.Code, apiErr.Error.Message)
		}
		siteID = site.ID

		c.mu.Lock()
		c.siteID = siteID
		c.mu.Unlock()
	}

	if listID == "" {
		lists := new(listCollection)
		apiErr := new(apiError)
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+token).
			SetQueryParam("$top", "200").
			SetResult(lists).
			SetError(apiErr).
			Get(fmt.Sprintf("/sites/%s/lists", siteID))
		if err != nil {
			return "", "", fmt.Errorf("get lists: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return "", "", fmt.Errorf("get lists failed: status=%d code=%s message=%s", resp.StatusCode(), apiErr.Error.Code, apiErr.Error.Message)
		}

		for _, l := range lists.Value {
			if l.DisplayName == listName {
				listID = l.ID
				break
			}
		}
		if listID == "" {
			return "", "", fmt.Errorf("list not found: %s", listName)
		}

		c.mu.Lock()
		c.listIDs[listName] = listID
		c.mu.Unlock()
	}

	return siteID, listID, nil
}
