package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIClient(t *testing.T) {
	t.Run("Get parses JSON responses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("expected /health, got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"status": "healthy", "authenticated": true}`)
		}))
		defer srv.Close()

		client := NewAPIClient(srv.URL, srv.Client())

		resp, err := client.Get(context.Background(), "/health")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		if !resp.IsJSON {
			t.Fatal("expected JSON response")
		}

		data, ok := resp.JSONData.(map[string]any)
		if !ok {
			t.Fatalf("expected object payload, got %T", resp.JSONData)
		}
		if data["status"] != "healthy" {
			t.Errorf("unexpected payload: %v", data)
		}
	})

	t.Run("Get keeps non-JSON bodies raw", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "plain text")
		}))
		defer srv.Close()

		client := NewAPIClient(srv.URL, srv.Client())

		resp, err := client.Get(context.Background(), "/")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.IsJSON {
			t.Error("expected non-JSON response")
		}
		if string(resp.Body) != "plain text" {
			t.Errorf("unexpected body: %q", resp.Body)
		}
	})

	t.Run("PostForm sends url-encoded data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if r.PostFormValue("query") != "mr brightside" {
				t.Errorf("unexpected form value: %q", r.PostFormValue("query"))
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := NewAPIClient(srv.URL, srv.Client())

		resp, err := client.PostForm(context.Background(), "/", "query=mr+brightside")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		client := NewAPIClient("http://127.0.0.1:0", nil)

		if _, err := client.Get(context.Background(), "/health"); err == nil {
			t.Error("expected connection error")
		}
	})
}
