package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldstock/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Token: "secret"}, logger.Default())
}

func writePage(w http.ResponseWriter, docs []RawOrder, bookmark string) {
	_ = json.NewEncoder(w).Encode(page{Docs: docs, Bookmark: bookmark})
}

func TestFetchAll_StopsOnEmptyPage(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("bookmark") == "" {
			writePage(w, []RawOrder{{ID: "a"}, {ID: "b"}}, "mark-1")
			return
		}
		writePage(w, nil, "mark-2")
	})

	orders, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, 2, calls)
}

func TestFetchAll_StopsWhenBookmarkAbsent(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		writePage(w, []RawOrder{{ID: "a"}}, "")
	})

	orders, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, calls)
}

func TestFetchAll_StopsWhenBookmarkRepeats(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		writePage(w, []RawOrder{{ID: fmt.Sprintf("doc-%d", calls)}}, "stuck")
	})

	orders, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	// First page moves the cursor to "stuck"; the second returns the
	// same cursor and terminates the walk.
	assert.Len(t, orders, 2)
	assert.Equal(t, 2, calls)
}

func TestFetchAll_StopsAtPageCap(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		writePage(w, []RawOrder{{ID: fmt.Sprintf("doc-%d", calls)}}, fmt.Sprintf("mark-%d", calls))
	})

	orders, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, maxPages)
	assert.Equal(t, maxPages, calls)
}

func TestFetchAll_SendsTokenHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Auth-Token"))
		writePage(w, nil, "")
	})

	_, err := client.FetchAll(context.Background())
	require.NoError(t, err)
}

func TestFetchAll_ReturnsPartialResultsOnFailure(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			writePage(w, []RawOrder{{ID: "a"}}, "mark-1")
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	orders, err := client.FetchAll(context.Background())
	require.Error(t, err)
	assert.Len(t, orders, 1)
}

func TestFetchAll_DecodesOrderFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"docs":[{
			"id":"ext-9",
			"numero":42,
			"ejercicio":2025,
			"fecha":"2025-05-05",
			"horaIni":"2025-05-05T08:00",
			"horaFin":"2025-05-05T17:00:00",
			"trabajoSolicitado":"boiler maintenance",
			"estado":2,
			"firmado":true,
			"tecnicos":[{"user":"jdoe@example.com","nombre":"Jane Doe","tipocuenta":1}],
			"cliente_empresa":"Acme SL"
		}],"bookmark":""}`)
	})

	orders, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "ext-9", o.ID)
	require.NotNil(t, o.Number)
	assert.Equal(t, 42, *o.Number)
	assert.Equal(t, 2, o.Status)
	assert.True(t, o.Signed)
	require.Len(t, o.Technicians, 1)
	assert.Equal(t, "jdoe@example.com", o.Technicians[0].Account)
	require.NotNil(t, o.ClientCompany)
	assert.Equal(t, "Acme SL", *o.ClientCompany)
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-08-20T14:30", time.Date(2025, 8, 20, 14, 30, 0, 0, time.Local)},
		{"2025-08-20T14:30:15", time.Date(2025, 8, 20, 14, 30, 15, 0, time.Local)},
		{"2025-08-20T14:30:15.500000", time.Date(2025, 8, 20, 14, 30, 15, 500*int(time.Millisecond), time.Local)},
		{"2025-08-20 14:30:15", time.Date(2025, 8, 20, 14, 30, 15, 0, time.Local)},
		{"2025-08-20", time.Date(2025, 8, 20, 0, 0, 0, 0, time.Local)},
		{"2025-08-20T14:30:15+02:00", time.Date(2025, 8, 20, 14, 30, 15, 0, time.Local)},
		{"2025-08-20T14:30:15Z", time.Date(2025, 8, 20, 14, 30, 15, 0, time.Local)},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(tt.want), "%s: got %v want %v", tt.in, got, tt.want)
	}

	_, err := ParseTime("")
	assert.Error(t, err)
	_, err = ParseTime("not-a-date")
	assert.Error(t, err)
}
