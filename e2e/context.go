package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"time"

	jwttoken "unitgate/internal/jwt_token"
	id "unitgate/pkg/domain"
)

// devSigningKey matches config.go when JWT_SIGNING_KEY is not set
const devSigningKey = "dev-secret-key-change-in-production"

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	AccessToken      string
	Actor            id.Actor
	Vars             map[string]string

	tokens *jwttoken.JWTService
}

// NewTestContext creates a new test context
func NewTestContext() *TestContext {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	key := os.Getenv("JWT_SIGNING_KEY")
	if key == "" {
		key = devSigningKey
	}
	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "unitgate"
	}

	return &TestContext{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Vars:   map[string]string{},
		tokens: jwttoken.NewJWTService(key, issuer, 15*time.Minute),
	}
}

// Authenticate mints an access token for actor; later requests carry it.
func (tc *TestContext) Authenticate(actor id.Actor) error {
	if actor.UserID.IsNil() {
		actor.UserID = id.NewUserID()
	}
	token, err := tc.tokens.GenerateAccessToken(context.Background(), actor)
	if err != nil {
		return fmt.Errorf("failed to mint token: %w", err)
	}
	tc.Actor = actor
	tc.AccessToken = token
	return nil
}

func (tc *TestContext) ClearAuth() {
	tc.Actor = id.Actor{}
	tc.AccessToken = ""
}

// Expand replaces {name} placeholders with saved variables.
func (tc *TestContext) Expand(s string) string {
	for k, v := range tc.Vars {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

func (tc *TestContext) Set(name, value string) {
	tc.Vars[name] = value
}

func (tc *TestContext) Get(name string) (string, error) {
	v, ok := tc.Vars[name]
	if !ok {
		return "", fmt.Errorf("variable %s was never saved", name)
	}
	return v, nil
}

// FreshPhone returns a random mobile number unlikely to collide across runs.
func (tc *TestContext) FreshPhone() string {
	return fmt.Sprintf("0913%07d", rand.IntN(10_000_000))
}

// FreshUnit returns a random unit number.
func (tc *TestContext) FreshUnit() string {
	return fmt.Sprintf("E2E-%06d", rand.IntN(1_000_000))
}

// POST makes an authenticated POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body, true)
}

// GET makes an authenticated GET request and stores the response
func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil, true)
}

// GETAnonymous makes a GET request without the Authorization header
func (tc *TestContext) GETAnonymous(path string) error {
	return tc.do(http.MethodGet, path, nil, false)
}

func (tc *TestContext) do(method, path string, body any, withAuth bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+tc.Expand(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth && tc.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.AccessToken)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a top-level field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}
	return false
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
