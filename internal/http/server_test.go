package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketbook/internal/core"
	"pocketbook/internal/storage"
	"pocketbook/internal/store"
	"pocketbook/internal/tracker"
)

var today = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.New(storage.NewMemory(), store.WithIDGenerator(store.NewTimestampIDs(func() time.Time { return today })))
	tr := tracker.New(st, tracker.WithClock(func() time.Time { return today }))
	tr.Load(context.Background())
	return NewServer(":0", tracker.NewSession(tr), nil, []string{"http://localhost:3000"})
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndCategories(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = do(t, srv, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[struct {
		Types      []string `json:"types"`
		Categories []string `json:"categories"`
	}](t, rr)
	assert.Equal(t, []string{"income", "expense"}, body.Types)
	assert.Len(t, body.Categories, len(core.Categories()))
}

func TestSubmitAndView(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"income","amount":1000,"category":"Salary","date":"2024-03-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"200,50","category":"food","date":"2024-03-02","description":"groceries"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"50","category":"Rent","date":"2024-02-10"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	// No month parameter selects the current month.
	rr = do(t, srv, http.MethodGet, "/api/view", "")
	require.Equal(t, http.StatusOK, rr.Code)
	v := decode[viewDTO](t, rr)
	assert.Equal(t, "2024-03", v.Month)
	require.Len(t, v.Transactions, 2)
	assert.Equal(t, "2024-03-02", v.Transactions[0].Date)
	assert.Equal(t, "799.50", v.Summary.Balance.String())
	assert.True(t, v.Summary.Positive)
	assert.Equal(t, []string{"Food"}, v.ByCategory.Labels)

	rr = do(t, srv, http.MethodGet, "/api/view?month=", "")
	require.Equal(t, http.StatusOK, rr.Code)
	all := decode[viewDTO](t, rr)
	assert.Equal(t, "", all.Month)
	assert.Len(t, all.Transactions, 3)

	rr = do(t, srv, http.MethodGet, "/api/view?month=2024-01", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[viewDTO](t, rr).Empty)

	rr = do(t, srv, http.MethodGet, "/api/view?month=2024-1", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubmitValidation(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/transactions", `{"type":"","amount":"abc","category":"Food","date":"2024-03-01"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decode[struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}](t, rr)
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, core.ErrInvalidType.Error(), body.Details["type"])
	assert.Contains(t, body.Details, "amount")

	rr = do(t, srv, http.MethodPost, "/api/transactions", `{"type":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubmitURLEncoded(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/transactions",
		strings.NewReader("type=expense&amount=3.20&category=Transport&date=2024-03-05"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "3.20", decode[transactionDTO](t, rr).Amount.String())
}

func TestSubmitExponentAmount(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"income","amount":1e2,"category":"Gift","date":"2024-03-05"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "100.00", decode[transactionDTO](t, rr).Amount.String())

	rr = do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"income","amount":2.5E-1,"category":"Gift","date":"2024-03-05"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "0.25", decode[transactionDTO](t, rr).Amount.String())
}

func TestEditFormKeepsStoredPrecision(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":33.333,"category":"Food","date":"2024-03-02"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	id := decode[transactionDTO](t, rr).ID

	rr = do(t, srv, http.MethodPost, "/api/transactions/"+id+"/edit", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"amount":"33.333"`)
}

func TestEditFlow(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"12","category":"Food","date":"2024-03-02"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[transactionDTO](t, rr).ID

	rr = do(t, srv, http.MethodPost, "/api/transactions/missing/edit", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, srv, http.MethodPost, "/api/transactions/"+id+"/edit", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"amount":"12"`)

	rr = do(t, srv, http.MethodGet, "/api/session", "")
	state := decode[sessionDTO](t, rr)
	require.NotNil(t, state.Editing)
	assert.Equal(t, id, *state.Editing)

	rr = do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"15","category":"Food","date":"2024-03-02"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[transactionDTO](t, rr)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "15.00", updated.Amount.String())

	rr = do(t, srv, http.MethodGet, "/api/session", "")
	assert.Nil(t, decode[sessionDTO](t, rr).Editing)

	rr = do(t, srv, http.MethodPost, "/api/transactions/"+id+"/edit", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, srv, http.MethodPost, "/api/edit/cancel", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, decode[sessionDTO](t, rr).Editing)
}

func TestDeleteConfirmation(t *testing.T) {
	srv := newTestServer(t)
	var ids []string
	for _, amount := range []string{"1", "2"} {
		rr := do(t, srv, http.MethodPost, "/api/transactions",
			`{"type":"expense","amount":"`+amount+`","category":"Food","date":"2024-03-02"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
		ids = append(ids, decode[transactionDTO](t, rr).ID)
	}

	rr := do(t, srv, http.MethodPost, "/api/transactions/"+ids[0]+"/delete", "")
	require.Equal(t, http.StatusAccepted, rr.Code)
	rr = do(t, srv, http.MethodPost, "/api/transactions/"+ids[1]+"/delete", "")
	require.Equal(t, http.StatusAccepted, rr.Code)
	state := decode[sessionDTO](t, rr)
	require.NotNil(t, state.PendingDelete)
	assert.Equal(t, ids[1], *state.PendingDelete)

	rr = do(t, srv, http.MethodPost, "/api/delete/confirm", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":"`+ids[1]+`","removed":true}`, rr.Body.String())

	rr = do(t, srv, http.MethodGet, "/api/view?month=", "")
	remaining := decode[viewDTO](t, rr).Transactions
	require.Len(t, remaining, 1)
	assert.Equal(t, ids[0], remaining[0].ID)

	rr = do(t, srv, http.MethodPost, "/api/transactions/"+ids[0]+"/delete", "")
	require.Equal(t, http.StatusAccepted, rr.Code)
	rr = do(t, srv, http.MethodPost, "/api/delete/cancel", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, decode[sessionDTO](t, rr).PendingDelete)

	rr = do(t, srv, http.MethodPost, "/api/delete/confirm", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":"","removed":false}`, rr.Body.String())
}

func TestFormDefaults(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		query string
		want  string
	}{
		{"", "2024-03-15"},
		{"?month=", "2024-03-15"},
		{"?month=2024-03", "2024-03-15"},
		{"?month=2023-12", "2023-12-01"},
	}
	for _, tt := range tests {
		rr := do(t, srv, http.MethodGet, "/api/form/defaults"+tt.query, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"date":"`+tt.want+`"}`, rr.Body.String(), tt.query)
	}
}
