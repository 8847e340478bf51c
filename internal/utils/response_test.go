package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var res Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name               string
		page, limit, total int
		want               Pagination
	}{
		{"first of three", 1, 20, 45, Pagination{Page: 1, Limit: 20, TotalItems: 45, TotalPages: 3, HasMore: true}},
		{"last page", 3, 20, 45, Pagination{Page: 3, Limit: 20, TotalItems: 45, TotalPages: 3}},
		{"defaults", 0, 0, 0, Pagination{Page: 1, Limit: 50}},
		{"limit capped", 1, 1000, 450, Pagination{Page: 1, Limit: MaxPageSize, TotalItems: 450, TotalPages: 3, HasMore: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.page, tt.limit, tt.total))
		})
	}
}

func TestSuccessWithPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req12345")

	SuccessWithPagination(c, 200, "Catalog items retrieved", []string{"f1"}, NewPagination(2, 20, 45))

	res := decodeResponse(t, w)
	assert.True(t, res.Success)
	assert.Equal(t, "req12345", res.Meta.RequestID)
	require.NotNil(t, res.Meta.Pagination)
	assert.True(t, res.Meta.Pagination.HasMore)
	assert.Equal(t, 3, res.Meta.Pagination.TotalPages)
}

func TestErrorWithData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorWithData(c, 422, "INVALID_IMPORT", "Import rejected", map[string]int{"rows": 3})

	assert.Equal(t, 422, w.Code)
	res := decodeResponse(t, w)
	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, "INVALID_IMPORT", res.Error.Code)
	assert.Equal(t, map[string]interface{}{"rows": float64(3)}, res.Data)
	assert.Len(t, res.Meta.RequestID, 8)
	assert.Nil(t, res.Meta.Pagination)
}

func TestError_OmitsData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, 404, "PANEL_NOT_FOUND", "Panel not found")

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.NotContains(t, raw, "data")
	assert.Contains(t, raw, "error")
}
