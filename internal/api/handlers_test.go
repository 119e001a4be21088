package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hasdouaaa/dashboard-autops/internal/auth"
	"github.com/hasdouaaa/dashboard-autops/internal/config"
	"github.com/hasdouaaa/dashboard-autops/internal/enrichment"
)

const uploadCSV = "date;heure;country;ip;url;user-agent\n" +
	"01/01/2024;10:00:00;FR;1.1.1.1;/a;Googlebot/2.1\n" +
	"01/01/2024;10:00:00;FR;2.2.2.2;/a;Mozilla/5.0\n" +
	"02/01/2024;11:00:00;DE;3.3.3.3;/b;Mozilla/5.0\n"

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	return testServerWithConfig(t, config.Load("/nonexistent/config.json"))
}

func testServerWithConfig(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	creds, err := auth.NewStore(auth.SeedUsers)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	srv := httptest.NewServer(NewRouter(creds, enrichment.New(""), cfg))
	t.Cleanup(srv.Close)
	return srv
}

// login returns the session cookie for a seeded user.
func login(t *testing.T, srv *httptest.Server) *http.Cookie {
	t.Helper()

	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"username":"user1","password":"pass1"}`))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "autops_session" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func doRequest(t *testing.T, srv *httptest.Server, cookie *http.Cookie, method, path, contentType, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"username":"user1","password":"nope"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRegisterDuplicateSeededUser(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"username":"user1","password":"whatever"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for seeded username, got %d", resp.StatusCode)
	}
}

func TestRegisterThenLogin(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"username":"alice","password":"s3cret"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"username":"alice","password":"s3cret"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected registered user to log in, got %d", resp.StatusCode)
	}
}

func TestStatsRequireAuth(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/stats/hourly-ips")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", resp.StatusCode)
	}
}

func TestUploadAndAggregate(t *testing.T) {
	srv := testServer(t)
	cookie := login(t, srv)

	resp := doRequest(t, srv, cookie, http.MethodPost, "/api/dataset", "text/csv", uploadCSV)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload returned %d", resp.StatusCode)
	}
	var summary map[string]interface{}
	decodeBody(t, resp, &summary)
	if summary["rows"].(float64) != 3 {
		t.Errorf("expected 3 rows, got %v", summary["rows"])
	}
	if summary["has_bot_type"] != true {
		t.Error("expected bottype to be derived from user-agent")
	}

	resp = doRequest(t, srv, cookie, http.MethodGet, "/api/stats/hourly-ips", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats returned %d", resp.StatusCode)
	}
	var hourly []struct {
		Hour int `json:"hour"`
		IPs  int `json:"ips"`
	}
	decodeBody(t, resp, &hourly)
	if len(hourly) != 2 || hourly[0].Hour != 10 || hourly[0].IPs != 2 {
		t.Errorf("unexpected hourly aggregate: %+v", hourly)
	}

	// Bot filter narrows to the two Mozilla rows.
	resp = doRequest(t, srv, cookie, http.MethodGet, "/api/stats/hourly-ips?bots=humans", "", "")
	decodeBody(t, resp, &hourly)
	if len(hourly) != 2 || hourly[0].IPs != 1 || hourly[1].IPs != 1 {
		t.Errorf("unexpected filtered aggregate: %+v", hourly)
	}
}

func TestAggregateSkippedWithoutColumns(t *testing.T) {
	srv := testServer(t)
	cookie := login(t, srv)

	resp := doRequest(t, srv, cookie, http.MethodPost, "/api/dataset", "text/csv", "ip;url\n1.1.1.1;/a\n")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, srv, cookie, http.MethodGet, "/api/stats/visitors-by-date", "", "")
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	if body["skipped"] != true {
		t.Errorf("expected skipped aggregate, got %v", body)
	}
}

func TestUploadRejectsMalformedCSV(t *testing.T) {
	srv := testServer(t)
	cookie := login(t, srv)

	resp := doRequest(t, srv, cookie, http.MethodPost, "/api/dataset", "text/csv", "a;b;a\n1;2;3\n")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate columns, got %d", resp.StatusCode)
	}

	// No dataset was exposed downstream.
	resp = doRequest(t, srv, cookie, http.MethodGet, "/api/dataset", "", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after failed upload, got %d", resp.StatusCode)
	}
}

func TestUploadRejectsOversizedBody(t *testing.T) {
	cfg := config.Load("/nonexistent/config.json")
	cfg.MaxUploadBytes = 64
	srv := testServerWithConfig(t, cfg)
	cookie := login(t, srv)

	// More bytes than the limit allows; truncating it would have parsed.
	body := uploadCSV + strings.Repeat("03/01/2024;12:00:00;FR;4.4.4.4;/c;Mozilla/5.0\n", 10)
	resp := doRequest(t, srv, cookie, http.MethodPost, "/api/dataset", "text/csv", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for oversized upload, got %d", resp.StatusCode)
	}

	resp = doRequest(t, srv, cookie, http.MethodGet, "/api/dataset", "", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after rejected upload, got %d", resp.StatusCode)
	}
}

func TestChartLifecycle(t *testing.T) {
	srv := testServer(t)
	cookie := login(t, srv)

	resp := doRequest(t, srv, cookie, http.MethodPost, "/api/dataset", "text/csv", uploadCSV)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Unsupported type: warning to the user, nothing stored.
	resp = doRequest(t, srv, cookie, http.MethodPost, "/api/charts", "application/json",
		`{"x_field":"country","y_field":"ip","chart_type":"Heatmap"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for heatmap, got %d", resp.StatusCode)
	}

	resp = doRequest(t, srv, cookie, http.MethodGet, "/api/charts", "", "")
	var figures []map[string]interface{}
	decodeBody(t, resp, &figures)
	if len(figures) != 0 {
		t.Fatalf("rejected chart was stored: %v", figures)
	}

	resp = doRequest(t, srv, cookie, http.MethodPost, "/api/charts", "application/json",
		`{"x_field":"country","y_field":"ip","chart_type":"bar","title":"IPs"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for bar chart, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, srv, cookie, http.MethodGet, "/api/charts", "", "")
	decodeBody(t, resp, &figures)
	if len(figures) != 1 || figures[0]["title"] != "IPs" {
		t.Errorf("expected one stored figure, got %v", figures)
	}
}

func TestExportFilteredCSV(t *testing.T) {
	srv := testServer(t)
	cookie := login(t, srv)

	resp := doRequest(t, srv, cookie, http.MethodPost, "/api/dataset", "text/csv", uploadCSV)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, srv, cookie, http.MethodGet, "/api/dataset/export?countries=FR", "", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export returned %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, "bottype") {
		t.Error("export should include the derived bottype column")
	}
	if strings.Contains(out, "3.3.3.3") {
		t.Error("export should exclude rows filtered out by country")
	}
	if !strings.Contains(out, "1.1.1.1") || !strings.Contains(out, "2.2.2.2") {
		t.Error("export is missing matching rows")
	}
}
