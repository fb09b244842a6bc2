// File: internal/infra/adapters/authadmin/gotrue_admin.go
package authadmin

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
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/adapter"
)

var _ adapter.AuthAdmin = (*GoTrueAdmin)(nil)

const service = "auth-admin"

// GoTrueAdmin calls the privileged /auth/v1/admin/users API with the
// service-role key.
type GoTrueAdmin struct {
	baseURL string
	key     string
	client  *http.Client
}

func NewGoTrueAdmin(baseURL, serviceRoleKey string, timeout time.Duration) (*GoTrueAdmin, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("auth admin url empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid auth admin url: %w", err)
	}
	if serviceRoleKey == "" {
		return nil, errors.New("service role key empty")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GoTrueAdmin{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     serviceRoleKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (a *GoTrueAdmin) usersURL(id string) string {
	u := a.baseURL + "/auth/v1/admin/users"
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (a *GoTrueAdmin) CreateUser(ctx context.Context, attrs model.AuthUserAttributes) (*model.AuthUser, error) {
	var user model.AuthUser
	if err := a.do(ctx, http.MethodPost, a.usersURL(""), attrs, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *GoTrueAdmin) UpdateUser(ctx context.Context, userID string, attrs model.AuthUserAttributes) (*model.AuthUser, error) {
	var user model.AuthUser
	if err := a.do(ctx, http.MethodPut, a.usersURL(userID), attrs, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *GoTrueAdmin) DeleteUser(ctx context.Context, userID string) error {
	return a.do(ctx, http.MethodDelete, a.usersURL(userID), nil, nil)
}

func (a *GoTrueAdmin) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &domain.GatewayError{Service: service, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("apikey", a.key)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return &domain.GatewayError{Service: service, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.GatewayError{Service: service, StatusCode: resp.StatusCode, Body: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.GatewayError{Service: service, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage extracts the human-readable part of an auth API error body.
func errorMessage(raw []byte) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(raw, &e) == nil {
		for _, s := range []string{e.Msg, e.Message, e.ErrorDescription} {
			if s != "" {
				return s
			}
		}
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
