package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const userAgent = "skillwire/1.0 (+https://github.com/skillwire/skillwire)"

// RegistryError is a typed failure from the skill registry: an HTTP status
// plus, when the server sent one, a machine-readable error code. The client
// never retries; retry policy belongs to the caller.
type RegistryError struct {
	Message    string
	StatusCode int
	Code       string
}

func (e *RegistryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("registry error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("registry error %d: %s", e.StatusCode, e.Message)
}

// registryErrorBody is the structured error shape the registry may return.
type registryErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// apiSuffixPattern matches the API suffix of a base URL ("/api" or
// "/api/v1" etc.), which is stripped to obtain the content root for
// relative download URLs.
var apiSuffixPattern = regexp.MustCompile(`/api(?:/v\d+)?/?$`)

// Client fetches plugin manifests and raw skill content from the registry.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a registry client from the run configuration. Every
// request is bounded by the configured timeout.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.APIBaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchManifest retrieves the plugin manifest for pluginSlug.
func (c *Client) FetchManifest(ctx context.Context, pluginSlug string) (*PluginManifest, error) {
	u := fmt.Sprintf("%s/plugins/%s/manifest", c.baseURL, url.PathEscape(pluginSlug))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var manifest PluginManifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest for %q: %w", pluginSlug, err)
	}
	return &manifest, nil
}

// DownloadSkillContent fetches raw skill content. downloadURL may be
// absolute, or a path relative to the registry's content root (the API base
// with its /api suffix stripped).
func (c *Client) DownloadSkillContent(ctx context.Context, downloadURL string) (string, error) {
	resolved, err := c.resolveDownloadURL(downloadURL)
	if err != nil {
		return "", err
	}
	body, err := c.get(ctx, resolved)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ReportInstall posts a best-effort install report for pluginSlug.
// Callers treat failures as non-fatal.
func (c *Client) ReportInstall(ctx context.Context, pluginSlug, method string) error {
	u := fmt.Sprintf("%s/plugins/%s/install", c.baseURL, url.PathEscape(pluginSlug))
	payload, _ := json.Marshal(map[string]string{"method": method})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reporting install: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRegistryError(resp)
	}
	return nil
}

// resolveDownloadURL turns a manifest download URL into an absolute URL.
func (c *Client) resolveDownloadURL(downloadURL string) (string, error) {
	if strings.HasPrefix(downloadURL, "http://") || strings.HasPrefix(downloadURL, "https://") {
		return downloadURL, nil
	}
	root := apiSuffixPattern.ReplaceAllString(c.baseURL, "")
	base, err := url.Parse(root)
	if err != nil {
		return "", fmt.Errorf("invalid registry base URL %q: %w", c.baseURL, err)
	}
	ref, err := url.Parse(downloadURL)
	if err != nil {
		return "", fmt.Errorf("invalid download URL %q: %w", downloadURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// get issues a GET and returns the body, converting non-2xx responses into
// a *RegistryError.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", fullURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", fullURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, registryErrorFrom(resp.StatusCode, resp.Status, body)
	}
	return body, nil
}

// newRegistryError builds a RegistryError from a response whose body has not
// been read yet.
func newRegistryError(resp *http.Response) *RegistryError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return registryErrorFrom(resp.StatusCode, resp.Status, body)
}

// registryErrorFrom parses a structured error body, falling back to the
// HTTP status line.
func registryErrorFrom(statusCode int, status string, body []byte) *RegistryError {
	regErr := &RegistryError{StatusCode: statusCode, Message: status}

	var parsed registryErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Error != "":
			regErr.Message = parsed.Error
		case parsed.Message != "":
			regErr.Message = parsed.Message
		}
		regErr.Code = parsed.Code
	}
	return regErr
}
