package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/drapery_api/internal/models"
)

// MaxPageSize is the largest page the catalog API serves.
const MaxPageSize = 200

// Client is a minimal HTTP client for a hosted catalog API that speaks the
// standard response envelope, such as a head-office drapery_api instance.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	debug      bool
}

// NewClient constructs a new catalog API client with sane defaults.
// baseURL is the API root, e.g. https://catalog.example.com.
func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		debug:      os.Getenv("ENV") == "development",
	}
}

// ListItems returns one page of catalog items matching p.
func (c *Client) ListItems(ctx context.Context, p ListParams) (*ItemsPage, error) {
	var env envelope[[]models.CatalogItem]
	if err := c.get(ctx, "/v1/catalog/items", p.values(), &env); err != nil {
		return nil, err
	}
	page := &ItemsPage{Items: env.Data, Page: p.Page}
	if page.Items == nil {
		page.Items = []models.CatalogItem{}
	}
	if env.Meta.Pagination != nil {
		page.Page = env.Meta.Pagination.Page
		page.TotalPages = env.Meta.Pagination.TotalPages
		page.TotalItems = env.Meta.Pagination.TotalItems
	}
	return page, nil
}

// GetItem returns a single item. A missing item yields ErrNotFound.
func (c *Client) GetItem(ctx context.Context, id string) (*models.CatalogItem, error) {
	var env envelope[models.CatalogItem]
	if err := c.get(ctx, "/v1/catalog/items/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// AllItems walks every page of the unfiltered catalog.
func (c *Client) AllItems(ctx context.Context) ([]models.CatalogItem, error) {
	var all []models.CatalogItem
	for page := 1; ; page++ {
		res, err := c.ListItems(ctx, ListParams{Page: page, Limit: MaxPageSize})
		if err != nil {
			return nil, fmt.Errorf("inventory page %d: %w", page, err)
		}
		all = append(all, res.Items...)
		if !res.HasMore() || len(res.Items) == 0 {
			break
		}
	}
	if all == nil {
		all = []models.CatalogItem{}
	}
	return all, nil
}

// get performs the HTTP GET and decodes the envelope into result.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, result any) error {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("url", target).
			Int("status_code", resp.StatusCode).
			Dur("latency", time.Since(start)).
			Msg("[CATALOG] Incoming response")
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env envelope[json.RawMessage]
		if json.Unmarshal(body, &env) == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if len(p.Categories) > 0 {
		v.Set("category", strings.Join(p.Categories, ","))
	}
	if len(p.Subcategories) > 0 {
		v.Set("subcategory", strings.Join(p.Subcategories, ","))
	}
	setIf(v, "search", p.Search)
	setIf(v, "vendorId", p.VendorID)
	setIf(v, "parentProductId", p.ParentProductID)
	setIf(v, "templateId", p.TemplateID)
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(min(p.Limit, MaxPageSize)))
	}
	return v
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
