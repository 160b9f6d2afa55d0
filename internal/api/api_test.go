package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/expensesplit/internal/export"
	"github.com/mmynk/expensesplit/internal/metrics"
	"github.com/mmynk/expensesplit/internal/service"
	"github.com/mmynk/expensesplit/internal/storage/sqlite"
)

type testServer struct {
	t      *testing.T
	server *httptest.Server
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	svc := service.NewExpenseService(store, service.WithMetrics(m), service.WithLogger(quiet))
	server := httptest.NewServer(New(svc, m, quiet))

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return &testServer{t: t, server: server}
}

func (s *testServer) do(method, path, body string) (*http.Response, []byte) {
	s.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp, data
}

func decodeBody(t *testing.T, data []byte) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	return out
}

func (s *testServer) createUser(name, email string) string {
	s.t.Helper()

	resp, data := s.do(http.MethodPost, "/createUser",
		`{"name":"`+name+`","email":"`+email+`","mobile_number":"5550001111"}`)
	require.Equal(s.t, http.StatusCreated, resp.StatusCode, "body: %s", data)

	body := decodeBody(s.t, data)
	return body["user"].(map[string]any)["id"].(string)
}

func (s *testServer) createExpense(amount string, participants ...string) string {
	s.t.Helper()

	ids, _ := json.Marshal(participants)
	resp, data := s.do(http.MethodPost, "/expenses",
		`{"description":"Dinner","amount":`+amount+`,"participants":`+string(ids)+`}`)
	require.Equal(s.t, http.StatusCreated, resp.StatusCode, "body: %s", data)

	body := decodeBody(s.t, data)
	return body["expense"].(map[string]any)["id"].(string)
}

func TestCreateUser(t *testing.T) {
	s := setupTestServer(t)

	resp, data := s.do(http.MethodPost, "/createUser",
		`{"name":"Alice","email":"alice@example.com","mobile_number":"5550001111"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body := decodeBody(t, data)
	assert.Equal(t, "User created successfully", body["message"])
	user := body["user"].(map[string]any)
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, "alice@example.com", user["email"])

	t.Run("duplicate email", func(t *testing.T) {
		resp, data := s.do(http.MethodPost, "/createUser",
			`{"name":"Alice","email":"alice@example.com","mobile_number":"5550001111"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "user already exists", decodeBody(t, data)["error"])
	})

	t.Run("field errors", func(t *testing.T) {
		resp, data := s.do(http.MethodPost, "/createUser", `{"name":"Al","email":"nope"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		fields := decodeBody(t, data)["errors"].(map[string]any)
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "mobile_number")
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, data := s.do(http.MethodPost, "/createUser", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid request body", decodeBody(t, data)["error"])
	})
}

func TestGetUser(t *testing.T) {
	s := setupTestServer(t)
	id := s.createUser("Alice", "alice@example.com")

	resp, data := s.do(http.MethodPost, "/getUser", `{"email":"alice@example.com"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, data)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, "Alice", body["name"])
	assert.Equal(t, "5550001111", body["mobile"])

	resp, data = s.do(http.MethodPost, "/getUser", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decodeBody(t, data)["error"], "not found")

	resp, _ = s.do(http.MethodPost, "/getUser", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExpenseLifecycle(t *testing.T) {
	s := setupTestServer(t)
	alice := s.createUser("Alice", "alice@example.com")
	bob := s.createUser("Bob", "bob@example.com")
	carol := s.createUser("Carol", "carol@example.com")

	expenseID := s.createExpense("100", alice, bob, carol)

	resp, data := s.do(http.MethodPost, "/expenses/"+expenseID+"/split",
		`{"split_method":"equal","participants":[{"id":"`+alice+`"},{"id":"`+bob+`"},{"id":"`+carol+`"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)

	// Amounts are JSON numbers with fixed decimals.
	assert.Contains(t, string(data), `"amount":33.34`)

	body := decodeBody(t, data)
	assert.Equal(t, "Expense split successfully", body["message"])
	assert.Equal(t, "equal", body["split_method"])
	shares := body["shares"].([]any)
	require.Len(t, shares, 3)
	assert.Equal(t, alice, shares[0].(map[string]any)["id"])
	assert.InDelta(t, 33.34, shares[0].(map[string]any)["amount"], 1e-9)

	resp, data = s.do(http.MethodGet, "/expenses/"+expenseID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	expense := decodeBody(t, data)
	assert.Equal(t, "equal", expense["split_method"])
	assert.Len(t, expense["shares"], 3)

	resp, data = s.do(http.MethodGet, "/expenses", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, expenseID, list[0]["id"])
}

func TestSplitExpense_EqualWithoutParticipants(t *testing.T) {
	s := setupTestServer(t)
	alice := s.createUser("Alice", "alice@example.com")
	bob := s.createUser("Bob", "bob@example.com")
	s.createUser("Carol", "carol@example.com")
	expenseID := s.createExpense("90", alice, bob)

	resp, data := s.do(http.MethodPost, "/expenses/"+expenseID+"/split", `{"split_method":"equal"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)

	shares := decodeBody(t, data)["shares"].([]any)
	require.Len(t, shares, 2)
	assert.Equal(t, alice, shares[0].(map[string]any)["id"])
	assert.Equal(t, bob, shares[1].(map[string]any)["id"])
	assert.InDelta(t, 45.0, shares[0].(map[string]any)["amount"], 1e-9)
	assert.InDelta(t, 45.0, shares[1].(map[string]any)["amount"], 1e-9)
}

func TestCreateExpense_Errors(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing description", `{"amount":10}`, http.StatusBadRequest},
		{"negative amount", `{"description":"x","amount":-5}`, http.StatusBadRequest},
		{"non-numeric amount", `{"description":"x","amount":"ten"}`, http.StatusBadRequest},
		{"no participants", `{"description":"x","amount":10}`, http.StatusBadRequest},
		{"unknown participant", `{"description":"x","amount":10,"participants":["ghost"]}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := s.do(http.MethodPost, "/expenses", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestSplitExpense_Errors(t *testing.T) {
	s := setupTestServer(t)
	alice := s.createUser("Alice", "alice@example.com")
	bob := s.createUser("Bob", "bob@example.com")
	carol := s.createUser("Carol", "carol@example.com")
	expenseID := s.createExpense("50", alice, bob)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantField  string
	}{
		{
			name:       "missing expense",
			path:       "/expenses/missing/split",
			body:       `{"split_method":"equal","participants":[{"id":"` + alice + `"}]}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown method",
			body:       `{"split_method":"shares","participants":[{"id":"` + alice + `"}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "exact mismatch",
			body:       `{"split_method":"exact","participants":[{"id":"` + alice + `","amount":20},{"id":"` + bob + `","amount":20}]}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "participants",
		},
		{
			name:       "percentage out of range",
			body:       `{"split_method":"percentage","participants":[{"id":"` + alice + `","percentage":150},{"id":"` + bob + `","percentage":-50}]}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "participants[0].percentage",
		},
		{
			name:       "unknown participant",
			body:       `{"split_method":"equal","participants":[{"id":"ghost"}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "user not recorded on the expense",
			body:       `{"split_method":"equal","participants":[{"id":"` + carol + `"}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "exact without participants",
			body:       `{"split_method":"exact"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "" {
				path = "/expenses/" + expenseID + "/split"
			}
			resp, data := s.do(http.MethodPost, path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, "body: %s", data)
			if tt.wantField != "" {
				fields := decodeBody(t, data)["errors"].(map[string]any)
				assert.Contains(t, fields, tt.wantField)
			}
		})
	}
}

func TestBalanceSheet(t *testing.T) {
	s := setupTestServer(t)
	alice := s.createUser("Alice", "alice@example.com")
	bob := s.createUser("Bob", "bob@example.com")
	expenseID := s.createExpense("80", alice, bob)

	resp, data := s.do(http.MethodPost, "/expenses/"+expenseID+"/split",
		`{"split_method":"percentage","participants":[{"id":"`+alice+`","percentage":"25"},{"id":"`+bob+`","percentage":"75"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)

	resp, data = s.do(http.MethodGet, "/balancesheet", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=balance_sheet.xlsx", resp.Header.Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Alice", "20.00"}, rows[1])
	assert.Equal(t, []string{"Bob", "60.00"}, rows[2])

	t.Run("unknown user filter", func(t *testing.T) {
		resp, _ := s.do(http.MethodGet, "/balancesheet?user_id=ghost", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	s := setupTestServer(t)

	resp, data := s.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody(t, data)["status"])

	resp, data = s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `expensesplit_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
}

func TestRouting(t *testing.T) {
	s := setupTestServer(t)

	resp, data := s.do(http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "route not found", decodeBody(t, data)["error"])

	resp, _ = s.do(http.MethodGet, "/createUser", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, data = s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `expensesplit_http_requests_total{code="404",method="GET",route="unmatched"} 1`)
	assert.Contains(t, string(data), `expensesplit_http_requests_total{code="405",method="GET",route="unmatched"} 1`)
}

func TestWriteJSON_LogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	a := New(nil, nil, slog.New(slog.NewTextHandler(&buf, nil)))

	rec := httptest.NewRecorder()
	a.writeJSON(rec, http.StatusOK, shareResponse{ID: "share", Amount: json.Number("not-a-number")})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "Failed to encode response")
}
