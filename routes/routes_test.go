package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zenrsr/form-craft/app"
	"github.com/zenrsr/form-craft/config"
	"github.com/zenrsr/form-craft/database"
	"github.com/zenrsr/form-craft/httpx"
)

func newTestServer(t *testing.T) (*httptest.Server, app.App) {
	t.Helper()

	cfg := config.Config{
		Addr:        "localhost:0",
		DBUrl:       filepath.Join(t.TempDir(), "test.sqlite"),
		TokenSecret: "test-secret",
		TokenTTL:    time.Minute,
	}

	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	a := app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
	}

	srv := httptest.NewServer(Wire(a))
	t.Cleanup(srv.Close)
	return srv, a
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("content-type", "application/json")
	if token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func signupAndLogin(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()

	resp, _ := doJSON(t, "POST", srv.URL+"/api/auth/signup", "", map[string]any{
		"username": username,
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req, err := http.NewRequest("POST", srv.URL+"/api/login", nil)
	require.NoError(t, err)
	req.SetBasicAuth(username, "correct horse battery")

	loginResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer loginResp.Body.Close()
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	var tokens map[string]any
	require.NoError(t, json.NewDecoder(loginResp.Body).Decode(&tokens))
	token, _ := tokens["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

var testFields = []map[string]any{
	{"id": "f1", "type": "email", "label": "Email", "required": true},
	{"id": "f2", "type": "checkbox", "label": "Toppings", "options": []string{"Olives", "Basil"}},
}

func createTestForm(t *testing.T, srv *httptest.Server, token string) (int, string) {
	t.Helper()

	resp, body := doJSON(t, "POST", srv.URL+"/api/admin/forms", token, map[string]any{
		"title":       "Pizza Order",
		"description": "Pick your pie",
		"fields":      testFields,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	id, _ := body["id"].(float64)
	urlId, _ := body["urlId"].(string)
	require.NotZero(t, id)
	require.NotEmpty(t, urlId)
	return int(id), urlId
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, "GET", srv.URL+"/api/admin/forms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateForm_RequiresEmailField(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signupAndLogin(t, srv, "maker")

	resp, body := doJSON(t, "POST", srv.URL+"/api/admin/forms", token, map[string]any{
		"title":  "No email here",
		"fields": []map[string]any{{"id": "f1", "type": "text", "label": "Name"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "email field")
}

func TestFormLifecycle(t *testing.T) {
	srv, a := newTestServer(t)
	token := signupAndLogin(t, srv, "maker")
	formId, urlId := createTestForm(t, srv, token)

	// public fetch by sharing token
	resp, body := doJSON(t, "GET", srv.URL+"/api/share/"+urlId, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Pizza Order", body["title"])

	// unknown sharing token
	resp, _ = doJSON(t, "GET", srv.URL+"/api/share/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// submit without the required email
	resp, _ = doJSON(t, "POST", srv.URL+"/api/forms/submit", "", map[string]any{
		"urlId":     urlId,
		"responses": map[string]any{"f2_Toppings": []string{"Olives"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// first submission
	resp, body = doJSON(t, "POST", srv.URL+"/api/forms/submit", "", map[string]any{
		"urlId":     urlId,
		"responses": map[string]any{"f1_Email": "a@b.com", "f2_Toppings": []string{"Olives"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	submissionId, _ := body["id"].(string)
	require.NotEmpty(t, submissionId)

	// duplicate email is rejected by the storage constraint
	resp, body = doJSON(t, "POST", srv.URL+"/api/forms/submit", "", map[string]any{
		"urlId":     urlId,
		"responses": map[string]any{"f1_Email": "a@b.com"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "You have already submitted this form.", body["error"])

	// a different email goes through
	resp, _ = doJSON(t, "POST", srv.URL+"/api/forms/submit", "", map[string]any{
		"urlId":     urlId,
		"responses": map[string]any{"f1_Email": "c@d.com"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// listing groups submissions under the form
	req, err := http.NewRequest("GET", srv.URL+"/api/admin/submissions", nil)
	require.NoError(t, err)
	req.Header.Set("authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var grouped []struct {
		FormID      int    `json:"formId"`
		FormTitle   string `json:"formTitle"`
		Submissions []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"submissions"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&grouped))
	require.Len(t, grouped, 1)
	assert.Equal(t, formId, grouped[0].FormID)
	assert.Len(t, grouped[0].Submissions, 2)

	// CSV export of one submission
	req, err = http.NewRequest("GET", srv.URL+"/api/admin/submissions/"+submissionId+"/export", nil)
	require.NoError(t, err)
	req.Header.Set("authorization", "Bearer "+token)
	csvResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer csvResp.Body.Close()
	require.Equal(t, http.StatusOK, csvResp.StatusCode)
	assert.Contains(t, csvResp.Header.Get("content-type"), "text/csv")

	csvBody, err := io.ReadAll(csvResp.Body)
	require.NoError(t, err)
	lines := strings.Split(string(csvBody), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Email,"))
	assert.Contains(t, lines[0], "Toppings")
	assert.Contains(t, lines[1], `"a@b.com"`)
	assert.Contains(t, lines[1], `"Olives"`)

	// delete cascades to submissions
	resp, _ = doJSON(t, "DELETE", srv.URL+"/api/admin/forms/"+itoa(formId), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int
	require.NoError(t, a.QueryRow("SELECT COUNT(*) FROM submission").Scan(&count))
	assert.Zero(t, count)
}

func TestUpdateForm_OptimisticLock(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signupAndLogin(t, srv, "maker")
	formId, _ := createTestForm(t, srv, token)

	update := map[string]any{
		"version":     1,
		"title":       "Renamed",
		"description": "",
		"fields":      testFields,
	}
	resp, _ := doJSON(t, "PUT", srv.URL+"/api/admin/forms/"+itoa(formId), token, update)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// same version again: stale write
	resp, _ = doJSON(t, "PUT", srv.URL+"/api/admin/forms/"+itoa(formId), token, update)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// unknown form
	resp, _ = doJSON(t, "PUT", srv.URL+"/api/admin/forms/999999", token, update)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFormsAreOwnerScoped(t *testing.T) {
	srv, _ := newTestServer(t)
	owner := signupAndLogin(t, srv, "owner")
	other := signupAndLogin(t, srv, "other")
	formId, _ := createTestForm(t, srv, owner)

	resp, _ := doJSON(t, "GET", srv.URL+"/api/admin/forms/"+itoa(formId), other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := doJSON(t, "GET", srv.URL+"/api/admin/forms", other, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	forms, _ := body["forms"].([]any)
	assert.Empty(t, forms)
}

func TestPublicFormPage(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signupAndLogin(t, srv, "maker")
	_, urlId := createTestForm(t, srv, token)

	resp, err := http.Get(srv.URL + "/share/" + urlId)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), `name="f1_Email"`)
	assert.Contains(t, string(page), "Pizza Order")
}

func TestRenderFormModes(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signupAndLogin(t, srv, "maker")
	formId, _ := createTestForm(t, srv, token)

	req, err := http.NewRequest("GET", srv.URL+"/api/admin/forms/"+itoa(formId)+"/render?mode=editor", nil)
	require.NoError(t, err)
	req.Header.Set("authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Add Option")
}

func TestSignup_RejectsDuplicateUsername(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, "POST", srv.URL+"/api/auth/signup", "", map[string]any{
		"username": "taken", "password": "long enough pw",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, "POST", srv.URL+"/api/auth/signup", "", map[string]any{
		"username": "taken", "password": "long enough pw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "taken")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
