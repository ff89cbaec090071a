package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticSource string

func (s staticSource) Token(ctx context.Context) (string, bool) {
	return string(s), s != ""
}

func TestTransport_InjectsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: &Transport{Source: staticSource("abc123")}}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer abc123" {
		t.Errorf("Expected Bearer header, got %q", gotAuth)
	}
}

func TestTransport_NoToken(t *testing.T) {
	client := &http.Client{Transport: &Transport{Source: staticSource("")}}
	_, err := client.Get("http://127.0.0.1:1")
	if err == nil {
		t.Fatal("Expected an error when no token is available")
	}
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Expected ErrNoToken, got %v", err)
	}
}

func TestTransport_DoesNotMutateOriginalRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	client := &http.Client{Transport: &Transport{Source: staticSource("abc123")}}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if req.Header.Get("Authorization") != "" {
		t.Error("Original request header should not be mutated")
	}
}
