package spotify

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestAuthorizeURL(t *testing.T) {
	a := NewAuthClient("https://accounts.example.com", "client-1", "secret", nil)

	raw := a.AuthorizeURL("http://localhost:8888/callback")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthorizeURL produced invalid URL: %v", err)
	}
	if u.Path != "/authorize" {
		t.Fatalf("path = %q, want /authorize", u.Path)
	}
	q := u.Query()
	if q.Get("client_id") != "client-1" {
		t.Fatalf("client_id = %q, want client-1", q.Get("client_id"))
	}
	if q.Get("response_type") != "code" {
		t.Fatalf("response_type = %q, want code", q.Get("response_type"))
	}
	if q.Get("redirect_uri") != "http://localhost:8888/callback" {
		t.Fatalf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if !strings.Contains(q.Get("scope"), "user-library-read") {
		t.Fatalf("scope = %q, want it to include user-library-read", q.Get("scope"))
	}
}

func TestRefreshTokenGrant(t *testing.T) {
	t.Parallel()

	var gotForm url.Values
	var gotUser, gotPass string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token" {
			http.NotFound(w, r)
			return
		}
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotForm = r.PostForm
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)

	a := NewAuthClient(server.URL, "client-1", "secret-1", nil)
	token, err := a.RefreshToken(testContext(t), "refresh-1")
	if err != nil {
		t.Fatalf("RefreshToken returned error: %v", err)
	}
	if token.AccessToken != "fresh" || token.ExpiresIn != 3600 {
		t.Fatalf("token = %#v, want fresh/3600", token)
	}
	if gotUser != "client-1" || gotPass != "secret-1" {
		t.Fatalf("basic auth = %q/%q, want the client credentials", gotUser, gotPass)
	}
	if gotForm.Get("grant_type") != "refresh_token" || gotForm.Get("refresh_token") != "refresh-1" {
		t.Fatalf("form = %v, want a refresh_token grant", gotForm)
	}
}

func TestExchangeCodeGrant(t *testing.T) {
	t.Parallel()

	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotForm = r.PostForm
		_, _ = w.Write([]byte(`{"access_token":"tok","refresh_token":"ref","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)

	a := NewAuthClient(server.URL, "client-1", "secret-1", nil)
	token, err := a.ExchangeCode(testContext(t), "code-1", "http://localhost:8888/callback")
	if err != nil {
		t.Fatalf("ExchangeCode returned error: %v", err)
	}
	if token.RefreshToken != "ref" {
		t.Fatalf("refresh token = %q, want ref", token.RefreshToken)
	}
	if gotForm.Get("grant_type") != "authorization_code" || gotForm.Get("code") != "code-1" {
		t.Fatalf("form = %v, want an authorization_code grant", gotForm)
	}
	if gotForm.Get("redirect_uri") != "http://localhost:8888/callback" {
		t.Fatalf("redirect_uri = %q", gotForm.Get("redirect_uri"))
	}
}

func TestTokenGrantRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Refresh token revoked"}`))
	}))
	t.Cleanup(server.Close)

	a := NewAuthClient(server.URL, "client-1", "secret-1", nil)
	_, err := a.RefreshToken(testContext(t), "revoked")
	if err == nil {
		t.Fatal("rejected grant returned nil error")
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Fatalf("error = %v, want the grant rejection surfaced", err)
	}
}

func TestTokenResponseMissingAccessToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	t.Cleanup(server.Close)

	a := NewAuthClient(server.URL, "client-1", "secret-1", nil)
	if _, err := a.RefreshToken(testContext(t), "r"); err == nil {
		t.Fatal("empty access_token accepted, want error")
	}
}
