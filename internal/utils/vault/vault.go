package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const defaultServiceAccountTokenPath = "/var/run/secrets/kubernetes.io/serviceaccount/token"

// Client reads bridge secrets from a Vault KV v2 mount using Kubernetes auth
type Client struct {
	httpClient   *resty.Client
	addr         string
	kvSecretPath string
	role         string
	tokenPath    string
	token        string
}

type Option func(*Client)

// WithServiceAccountTokenPath overrides where the Kubernetes JWT is read from.
func WithServiceAccountTokenPath(path string) Option {
	return func(c *Client) {
		c.tokenPath = path
	}
}

// New logs in to Vault and returns a client bound to kvSecretPath.
func New(ctx context.Context, addr, kvSecretPath, role string, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: resty.New().
			SetTimeout(10*time.Second).
			SetHeader("Content-Type", "application/json"),
		addr:         strings.TrimRight(addr, "/"),
		kvSecretPath: strings.Trim(kvSecretPath, "/"),
		role:         role,
		tokenPath:    defaultServiceAccountTokenPath,
	}
	for _, opt := range opts {
		opt(c)
	}

	token, err := c.login(ctx)
	if err != nil {
		return nil, err
	}
	c.token = token
	return c, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	jwt, err := os.ReadFile(c.tokenPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to read service account token")
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"jwt":  strings.TrimSpace(string(jwt)),
			"role": c.role,
		}).
		Post(fmt.Sprintf("%s/v1/auth/kubernetes/login", c.addr))
	if err != nil {
		return "", errors.Wrap(err, "vault login request failed")
	}
	if resp.IsError() {
		return "", errors.Errorf("vault authentication failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Errors []string `json:"errors"`
		Auth   *struct {
			ClientToken string `json:"client_token"`
		} `json:"auth"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", errors.Wrap(err, "failed to parse vault login response")
	}
	if len(result.Errors) > 0 {
		return "", errors.Errorf("vault authentication error: %s", strings.Join(result.Errors, "; "))
	}
	if result.Auth == nil || result.Auth.ClientToken == "" {
		return "", errors.New("vault returned no client_token")
	}

	return result.Auth.ClientToken, nil
}

// Secrets returns every string value stored at the KV path. Non-string values are skipped.
func (c *Client) Secrets(ctx context.Context) (map[string]string, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-Vault-Token", c.token).
		Get(fmt.Sprintf("%s/v1/%s", c.addr, c.kvSecretPath))
	if err != nil {
		return nil, errors.Wrap(err, "vault KV request failed")
	}
	if resp.IsError() {
		return nil, errors.Errorf("vault KV get failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Errors []string `json:"errors"`
		Data   *struct {
			Data map[string]interface{} `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, errors.Wrap(err, "failed to parse vault KV response")
	}
	if len(result.Errors) > 0 {
		return nil, errors.Errorf("vault KV get error: %s", strings.Join(result.Errors, "; "))
	}
	if result.Data == nil || result.Data.Data == nil {
		return nil, errors.New("vault response missing nested 'data' field")
	}

	secrets := make(map[string]string, len(result.Data.Data))
	for key, value := range result.Data.Data {
		if s, ok := value.(string); ok {
			secrets[key] = s
		}
	}
	return secrets, nil
}

// GetKV retrieves one secret from the KV path.
func (c *Client) GetKV(ctx context.Context, secretKey string) (string, error) {
	secrets, err := c.Secrets(ctx)
	if err != nil {
		return "", err
	}
	secret, ok := secrets[secretKey]
	if !ok {
		return "", errors.Errorf("secret key '%s' not found", secretKey)
	}
	return secret, nil
}
