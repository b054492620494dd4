package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RemoteVerifier asks the identity service who a bearer token belongs to.
// The service exposes a GET user endpoint that accepts the end user's token
// plus the backend's service key.
type RemoteVerifier struct {
	BaseURL    string
	ServiceKey string
	Client     *http.Client
}

func NewRemoteVerifier(baseURL, serviceKey string) *RemoteVerifier {
	return &RemoteVerifier{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type remoteUserResp struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if v.BaseURL == "" || v.ServiceKey == "" {
		return Identity{}, ErrUnavailable
	}

	url := fmt.Sprintf("%s/auth/v1/user", v.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.ServiceKey)

	resp, err := v.Client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: call provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Identity{}, ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Identity{}, fmt.Errorf("identity: provider status %d", resp.StatusCode)
	}

	var decoded remoteUserResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Identity{}, fmt.Errorf("identity: decode provider response: %w", err)
	}
	if decoded.ID == "" {
		return Identity{}, ErrInvalidCredentials
	}

	role := decoded.Role
	if role == "" {
		role = "user"
	}
	return Identity{ID: decoded.ID, Email: decoded.Email, Role: role}, nil
}
