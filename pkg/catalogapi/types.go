package catalogapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/GTDGit/drapery_api/internal/models"
)

// ErrNotFound is matched by APIError values with a 404 status.
var ErrNotFound = errors.New("catalog item not found")

// ListParams scopes a catalog listing. Empty fields are not sent.
type ListParams struct {
	Categories      []string
	Subcategories   []string
	Search          string
	VendorID        string
	ParentProductID string
	TemplateID      string
	Page            int
	Limit           int
}

// ItemsPage is one page of a listing.
type ItemsPage struct {
	Items      []models.CatalogItem
	Page       int
	TotalPages int
	TotalItems int
}

// HasMore reports whether pages remain after this one.
func (p *ItemsPage) HasMore() bool {
	return p.Page < p.TotalPages
}

// APIError is a non-2xx response from the catalog API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("catalog api: status %d", e.Status)
	}
	return fmt.Sprintf("catalog api: status %d: %s: %s", e.Status, e.Code, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		Pagination *struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalItems int `json:"totalItems"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	} `json:"meta"`
}
