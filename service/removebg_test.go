package service

import (
	"context"
	"errors"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
)

func TestRemoveBGSendsKeyAndFields(t *testing.T) {
	result := mustPNG(t, solidImage(2, 2, color.NRGBA{}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("missing api key header")
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("size") != "auto" || r.FormValue("format") != "auto" {
			t.Errorf("unexpected fields size=%q format=%q", r.FormValue("size"), r.FormValue("format"))
		}
		f, _, err := r.FormFile("image_file")
		if err != nil {
			t.Errorf("image_file: %v", err)
		} else {
			data, _ := io.ReadAll(f)
			if http.DetectContentType(data) != "image/jpeg" {
				t.Errorf("image_file should be jpeg, got %s", http.DetectContentType(data))
			}
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(result)
	}))
	defer srv.Close()

	c := NewRemoveBGClient(&config.RemoveBGConfig{Endpoint: srv.URL, APIKey: "secret", Timeout: 5 * time.Second})
	data, ct, err := c.Remove(context.Background(), solidImage(4, 4, color.NRGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ct != "image/png" || len(data) != len(result) {
		t.Fatalf("unexpected result %s (%d bytes)", ct, len(data))
	}
}

func TestRemoveBGAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"errors":[{"title":"Insufficient credits","code":"insufficient_credits"}]}`))
	}))
	defer srv.Close()

	c := NewRemoveBGClient(&config.RemoveBGConfig{Endpoint: srv.URL, APIKey: "secret", Timeout: 5 * time.Second})
	_, _, err := c.Remove(context.Background(), solidImage(2, 2, color.NRGBA{A: 255}))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusPaymentRequired || apiErr.Title != "Insufficient credits" || apiErr.Code != "insufficient_credits" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestRemoveBGNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewRemoveBGClient(&config.RemoveBGConfig{Endpoint: srv.URL, APIKey: "secret", Timeout: 5 * time.Second})
	_, _, err := c.Remove(context.Background(), solidImage(2, 2, color.NRGBA{A: 255}))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Title != "Bad Gateway" {
		t.Fatalf("expected status text fallback, got %v", err)
	}
}

func TestRemoveBGMissingKey(t *testing.T) {
	c := NewRemoveBGClient(&config.RemoveBGConfig{Endpoint: "http://127.0.0.1:1"})
	if _, _, err := c.Remove(context.Background(), solidImage(1, 1, color.NRGBA{A: 255})); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("0123456789"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 10)
	data, err := f.Fetch(context.Background(), srv.URL+"/ok")
	if err != nil || string(data) != "0123456789" {
		t.Fatalf("fetch: %q, %v", data, err)
	}

	var apiErr *APIError
	if _, err := f.Fetch(context.Background(), srv.URL+"/missing"); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}

	small := NewFetcher(5*time.Second, 5)
	if _, err := small.Fetch(context.Background(), srv.URL+"/ok"); err == nil {
		t.Fatal("expected size limit error")
	}
}
