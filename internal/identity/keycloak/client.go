package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
)

// UserRepresentation mirrors the subset of Keycloak's admin REST user
// representation the bridge reads and writes.
type UserRepresentation struct {
	ID          string              `json:"id,omitempty"`
	Username    string              `json:"username,omitempty"`
	Email       string              `json:"email,omitempty"`
	FirstName   string              `json:"firstName,omitempty"`
	LastName    string              `json:"lastName,omitempty"`
	Enabled     *bool               `json:"enabled,omitempty"`
	Credentials []CredentialsUpdate `json:"credentials,omitempty"`
}

// GroupRepresentation mirrors Keycloak's admin REST group representation.
type GroupRepresentation struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`
}

// CredentialsUpdate is Keycloak's reset-password payload.
type CredentialsUpdate struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

// API abstracts the subset of the Keycloak admin REST API used by Adapter.
// This allows testing the adapter without real HTTP calls.
type API interface {
	GetUser(ctx context.Context, userID string) (*UserRepresentation, error)
	FindUsers(ctx context.Context, query url.Values) ([]UserRepresentation, error)
	GetUserGroups(ctx context.Context, userID string) ([]GroupRepresentation, error)
	GetGroup(ctx context.Context, groupID string) (*GroupRepresentation, error)
	FindGroups(ctx context.Context, search string) ([]GroupRepresentation, error)

	CreateUser(ctx context.Context, u UserRepresentation) (string, error)
	UpdateUser(ctx context.Context, userID string, u UserRepresentation) error
	DeleteUser(ctx context.Context, userID string) error
	ResetPassword(ctx context.Context, userID string, cred CredentialsUpdate) error

	CreateGroup(ctx context.Context, g GroupRepresentation) (string, error)
	UpdateGroup(ctx context.Context, groupID string, g GroupRepresentation) error
	DeleteGroup(ctx context.Context, groupID string) error

	AddUserToGroup(ctx context.Context, userID, groupID string) error
	RemoveUserFromGroup(ctx context.Context, userID, groupID string) error
}

// Client talks to one Keycloak realm's admin REST API, authenticating with
// the bridge's service-account client via the OAuth2 client-credentials
// grant. The oauth2 transport refreshes the token as needed.
type Client struct {
	baseURL string // e.g. https://keycloak.example.com
	realm   string
	http    *http.Client
}

// Compile-time interface check.
var _ API = (*Client)(nil)

// NewClient builds a Client for one realm. clientID/clientSecret identify the
// bridge's service account, which must hold the realm-management roles the
// configured operations need.
func NewClient(ctx context.Context, baseURL, realm, clientID, clientSecret string) *Client {
	cc := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", strings.TrimRight(baseURL, "/"), realm),
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		realm:   realm,
		http:    cc.Client(ctx),
	}
}

func (c *Client) adminURL(parts ...string) string {
	return c.baseURL + path.Join(append([]string{"/admin/realms", c.realm}, parts...)...)
}

// do issues one admin REST call and decodes the response into out (when
// non-nil). A 404 is returned as domain.ErrNotFound; lookup helpers translate
// that into "nothing found" where the contract wants nil instead of an error.
func (c *Client) do(ctx context.Context, method, u string, body, out any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("keycloak.Client.do: encode body: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("keycloak.Client.do: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("keycloak.Client.do: %s %s: %w: %w", method, u, domain.ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("keycloak.Client.do: %s %s: status %d: %s: %w",
			method, u, resp.StatusCode, strings.TrimSpace(string(msg)), classifyStatus(resp.StatusCode))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("keycloak.Client.do: decode response: %w: %w", domain.ErrInternal, err)
		}
	}
	return resp, nil
}

func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return domain.ErrBadRequest
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	default:
		return domain.ErrInternal
	}
}

func (c *Client) GetUser(ctx context.Context, userID string) (*UserRepresentation, error) {
	var u UserRepresentation
	if _, err := c.do(ctx, http.MethodGet, c.adminURL("users", userID), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) FindUsers(ctx context.Context, query url.Values) ([]UserRepresentation, error) {
	u := c.adminURL("users")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var users []UserRepresentation
	if _, err := c.do(ctx, http.MethodGet, u, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUserGroups(ctx context.Context, userID string) ([]GroupRepresentation, error) {
	var groups []GroupRepresentation
	if _, err := c.do(ctx, http.MethodGet, c.adminURL("users", userID, "groups"), nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) GetGroup(ctx context.Context, groupID string) (*GroupRepresentation, error) {
	var g GroupRepresentation
	if _, err := c.do(ctx, http.MethodGet, c.adminURL("groups", groupID), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) FindGroups(ctx context.Context, search string) ([]GroupRepresentation, error) {
	u := c.adminURL("groups")
	if search != "" {
		u += "?" + url.Values{"search": {search}}.Encode()
	}
	var groups []GroupRepresentation
	if _, err := c.do(ctx, http.MethodGet, u, nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) CreateUser(ctx context.Context, u UserRepresentation) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, c.adminURL("users"), u, nil)
	if err != nil {
		return "", err
	}
	return idFromLocation(resp.Header.Get("Location")), nil
}

func (c *Client) UpdateUser(ctx context.Context, userID string, u UserRepresentation) error {
	_, err := c.do(ctx, http.MethodPut, c.adminURL("users", userID), u, nil)
	return err
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	_, err := c.do(ctx, http.MethodDelete, c.adminURL("users", userID), nil, nil)
	return err
}

func (c *Client) ResetPassword(ctx context.Context, userID string, cred CredentialsUpdate) error {
	_, err := c.do(ctx, http.MethodPut, c.adminURL("users", userID, "reset-password"), cred, nil)
	return err
}

func (c *Client) CreateGroup(ctx context.Context, g GroupRepresentation) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, c.adminURL("groups"), g, nil)
	if err != nil {
		return "", err
	}
	return idFromLocation(resp.Header.Get("Location")), nil
}

func (c *Client) UpdateGroup(ctx context.Context, groupID string, g GroupRepresentation) error {
	_, err := c.do(ctx, http.MethodPut, c.adminURL("groups", groupID), g, nil)
	return err
}

func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	_, err := c.do(ctx, http.MethodDelete, c.adminURL("groups", groupID), nil, nil)
	return err
}

func (c *Client) AddUserToGroup(ctx context.Context, userID, groupID string) error {
	_, err := c.do(ctx, http.MethodPut, c.adminURL("users", userID, "groups", groupID), nil, nil)
	return err
}

func (c *Client) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	_, err := c.do(ctx, http.MethodDelete, c.adminURL("users", userID, "groups", groupID), nil, nil)
	return err
}

// idFromLocation extracts the created resource id from Keycloak's Location
// header (".../users/<id>").
func idFromLocation(location string) string {
	if location == "" {
		return ""
	}
	return path.Base(location)
}
