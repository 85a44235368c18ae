package salesforce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SF_USERNAME", "integration@example.com")
	t.Setenv("SF_PASSWORD", "secret")
	t.Setenv("SF_SECURITY_TOKEN", "tok123")
	t.Setenv("SF_CONSUMER_KEY", "key")
	t.Setenv("SF_CONSUMER_SECRET", "csecret")
	t.Setenv("SF_LOGIN_URL", "")
	t.Setenv("SF_API_VERSION", "")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.LoginURL != "https://login.salesforce.com" {
		t.Errorf("default login url = %q", cfg.LoginURL)
	}
	if cfg.APIVersion != defaultAPIVersion {
		t.Errorf("default api version = %q", cfg.APIVersion)
	}

	t.Setenv("SF_USERNAME", "")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error for missing username")
	}
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/oauth2/token" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "password" {
			t.Errorf("grant_type = %q", got)
		}
		// The security token must be appended to the password.
		if got := r.PostForm.Get("password"); got != "secrettok123" {
			t.Errorf("password = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "00Dxx!token",
			"instance_url": "https://example.my.salesforce.com/",
		})
	}))
	defer server.Close()

	client, err := Login(context.Background(), Config{
		Username:       "integration@example.com",
		Password:       "secret",
		SecurityToken:  "tok123",
		ConsumerKey:    "key",
		ConsumerSecret: "csecret",
		LoginURL:       server.URL,
		APIVersion:     "v59.0",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if client.accessToken != "00Dxx!token" {
		t.Errorf("accessToken = %q", client.accessToken)
	}
	if client.instanceURL != "https://example.my.salesforce.com" {
		t.Errorf("instanceURL not trimmed: %q", client.instanceURL)
	}
}

func TestLoginFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "authentication failure",
		})
	}))
	defer server.Close()

	_, err := Login(context.Background(), Config{
		Username:       "integration@example.com",
		Password:       "wrong",
		ConsumerKey:    "key",
		ConsumerSecret: "csecret",
		LoginURL:       server.URL,
	})
	if err == nil {
		t.Fatal("expected login error")
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Errorf("error should surface the oauth error code: %v", err)
	}
}

func TestQueryPagination(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		// The locator path shares the /query prefix, so exact match first.
		switch {
		case r.URL.Path == "/services/data/v59.0/query/01gxx-2000":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"totalSize": 3,
				"done":      true,
				"records":   []map[string]string{{"Id": "006C"}},
			})
		case strings.HasPrefix(r.URL.Path, "/services/data/v59.0/query"):
			if got := r.URL.Query().Get("q"); !strings.Contains(got, "FROM Opportunity") {
				t.Errorf("soql not forwarded: %q", got)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"totalSize":      3,
				"done":           false,
				"nextRecordsUrl": "/services/data/v59.0/query/01gxx-2000",
				"records":        []map[string]string{{"Id": "006A"}, {"Id": "006B"}},
			})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := &Client{
		http:        server.Client(),
		instanceURL: server.URL,
		accessToken: "tok",
		apiVersion:  "v59.0",
	}

	page, err := client.Query(context.Background(), "SELECT Id FROM Opportunity")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if authHeader != "Bearer tok" {
		t.Errorf("Authorization = %q", authHeader)
	}
	if page.Done || len(page.Records) != 2 {
		t.Fatalf("first page: done=%v records=%d", page.Done, len(page.Records))
	}

	next, err := client.QueryMore(context.Background(), page.NextRecordsURL)
	if err != nil {
		t.Fatalf("QueryMore: %v", err)
	}
	if !next.Done || len(next.Records) != 1 {
		t.Fatalf("second page: done=%v records=%d", next.Done, len(next.Records))
	}

	if _, err := client.QueryMore(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty locator")
	}
}

func TestQueryAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`[{"errorCode":"INVALID_SESSION_ID","message":"Session expired"}]`))
	}))
	defer server.Close()

	client := &Client{
		http:        server.Client(),
		instanceURL: server.URL,
		accessToken: "stale",
		apiVersion:  "v59.0",
	}
	_, err := client.Query(context.Background(), "SELECT Id FROM User")
	if err == nil {
		t.Fatal("expected api error")
	}
	if !strings.Contains(err.Error(), "INVALID_SESSION_ID") {
		t.Errorf("error should include the response body: %v", err)
	}
}
