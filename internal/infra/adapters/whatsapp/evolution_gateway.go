// File: internal/infra/adapters/whatsapp/evolution_gateway.go
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/ports/adapter"
)

var _ adapter.WhatsAppGateway = (*EvolutionGateway)(nil)

const maxErrorBody = 512

// EvolutionGateway sends messages through an Evolution API instance.
type EvolutionGateway struct {
	baseURL  string
	instance string
	apiKey   string
	client   *http.Client
}

func NewEvolutionGateway(baseURL, instance, apiKey string, timeout time.Duration) (*EvolutionGateway, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("whatsapp base url empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid whatsapp base url: %w", err)
	}
	if instance == "" {
		return nil, errors.New("whatsapp instance empty")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &EvolutionGateway{
		baseURL:  strings.TrimRight(baseURL, "/"),
		instance: instance,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (g *EvolutionGateway) Name() string { return "evolution" }

func (g *EvolutionGateway) SendText(ctx context.Context, number, text string) (string, error) {
	payload := map[string]any{
		"number": number,
		"text":   text,
	}
	b, _ := json.Marshal(payload)
	endpoint := g.baseURL + "/message/sendText/" + url.PathEscape(g.instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", &domain.GatewayError{Service: g.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &domain.GatewayError{Service: g.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.GatewayError{Service: g.Name(), StatusCode: resp.StatusCode, Body: truncate(string(body))}
	}

	var out struct {
		Key struct {
			ID string `json:"id"`
		} `json:"key"`
		MessageID string `json:"messageId"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &domain.GatewayError{Service: g.Name(), StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.Key.ID != "" {
		return out.Key.ID, nil
	}
	return out.MessageID, nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
