//go:build !integration

package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"consulting-portal/internal/domain"
)

func TestEvolutionGateway_SendText(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"key":{"id":"BAE5F00D"},"status":"PENDING"}`))
	}))
	defer srv.Close()

	g, err := NewEvolutionGateway(srv.URL+"/", "portal", "secret", time.Second)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	id, err := g.SendText(context.Background(), "5511987654321", "Olá")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "BAE5F00D" {
		t.Errorf("id = %q", id)
	}
	if gotPath != "/message/sendText/portal" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("apikey = %q", gotKey)
	}
	if gotBody["number"] != "5511987654321" || gotBody["text"] != "Olá" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestEvolutionGateway_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`instance disconnected`))
	}))
	defer srv.Close()

	g, _ := NewEvolutionGateway(srv.URL, "portal", "secret", time.Second)
	_, err := g.SendText(context.Background(), "5511987654321", "hi")
	var ge *domain.GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("want GatewayError, got %v", err)
	}
	if ge.StatusCode != http.StatusBadGateway || ge.Body != "instance disconnected" {
		t.Errorf("unexpected error fields: %+v", ge)
	}
	if !ge.Retryable() {
		t.Error("5xx should be retryable")
	}
}

func TestEvolutionGateway_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	g, _ := NewEvolutionGateway(url, "portal", "secret", time.Second)
	_, err := g.SendText(context.Background(), "5511987654321", "hi")
	var ge *domain.GatewayError
	if !errors.As(err, &ge) || ge.Err == nil {
		t.Fatalf("want transport GatewayError, got %v", err)
	}
}

func TestNewEvolutionGateway_Validation(t *testing.T) {
	if _, err := NewEvolutionGateway("", "portal", "k", 0); err == nil {
		t.Error("empty base url accepted")
	}
	if _, err := NewEvolutionGateway("http://evo.local", "", "k", 0); err == nil {
		t.Error("empty instance accepted")
	}
}
