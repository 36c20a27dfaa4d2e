package common_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-katalog/internal/common"
)

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", common.ClientIP(r))

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Real-IP", "198.51.100.4")
	require.Equal(t, "198.51.100.4", common.ClientIP(r))

	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.10:54321"
	require.Equal(t, "192.0.2.10", common.ClientIP(r))

	require.Equal(t, "", common.ClientIP(nil))
}

func TestAtoiDefault(t *testing.T) {
	require.Equal(t, 7, common.AtoiDefault("7", 1))
	require.Equal(t, 1, common.AtoiDefault("", 1))
	require.Equal(t, 1, common.AtoiDefault("seven", 1))
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/offers?page=3&limit=25", nil)
	page, perPage := common.ParsePagination(r, 50)
	require.Equal(t, 3, page)
	require.Equal(t, 25, perPage)
	require.Equal(t, 50, common.Offset(page, perPage))

	r = httptest.NewRequest("GET", "/offers?page=-1&limit=abc", nil)
	page, perPage = common.ParsePagination(r, 50)
	require.Equal(t, 1, page)
	require.Equal(t, 50, perPage)
	require.Equal(t, 0, common.Offset(page, perPage))
}
