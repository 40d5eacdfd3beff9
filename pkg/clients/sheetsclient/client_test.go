package sheetsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClientWithOptions(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return client
}

func TestReadTable_FirstTab(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/spreadsheets/sheet-1"):
			_, _ = w.Write([]byte(`{"sheets":[{"properties":{"title":"Skills"}},{"properties":{"title":"Old"}}]}`))
		case strings.Contains(r.URL.Path, "/values/Skills"):
			_, _ = w.Write([]byte(`{"range":"Skills","values":[["Name","Ward"],["Kim "," 71W"],["Lee"]]}`))
		default:
			http.NotFound(w, r)
		}
	})

	header, rows, err := client.ReadTable(context.Background(), "sheet-1", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Ward"}, header)
	assert.Equal(t, [][]string{{"Kim", "71W"}, {"Lee", ""}}, rows)
}

func TestReadTable_EmptyTab(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Skills"}`))
	})

	_, _, err := client.ReadTable(context.Background(), "sheet-1", "Skills")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tab "Skills" is empty`)
}

func TestToTable(t *testing.T) {
	header, rows := ToTable([][]interface{}{
		{"이름", "병동", nil},
		{"김", 71, "extra", "more"},
	})

	assert.Equal(t, []string{"이름", "병동", ""}, header)
	assert.Equal(t, [][]string{{"김", "71", "extra", "more"}}, rows)

	header, rows = ToTable(nil)
	assert.Nil(t, header)
	assert.Nil(t, rows)
}
