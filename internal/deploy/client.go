// Copyright 2025 Code Weaver Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package deploy publishes generated FileSets to a Netlify-compatible
// hosting API and handles the account site quota by retiring the oldest
// locally recorded sites.
package deploy

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/your-org/code-weaver/internal/fileset"
)

const (
	defaultBaseURL     = "https://api.netlify.com/api/v1"
	defaultHTTPTimeout = 60 * time.Second
)

// ErrQuotaExceeded marks a site-creation rejection caused by the account
// site limit, as opposed to an ordinary API failure.
var ErrQuotaExceeded = errors.New("hosting site quota exceeded")

// Site is the hosting provider's view of one site.
type Site struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	SSLURL    string    `json:"ssl_url"`
	AdminURL  string    `json:"admin_url"`
	CreatedAt time.Time `json:"created_at"`
}

// deployStatus is the provider's view of one zip deploy.
type deployStatus struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// Client is a thin wrapper over the hosting REST API. It performs no quota
// handling; that lives in the Adapter.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient requires an API token; base URL and HTTP client use defaults
// suitable for production.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("deploy: API token required")
	}
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, raw, fmt.Errorf("deploy: decode response: %w", err)
		}
	}
	return resp.StatusCode, raw, nil
}

// CreateSite provisions a new site. Quota rejections surface as
// ErrQuotaExceeded so the adapter can run cleanup and retry.
func (c *Client) CreateSite(ctx context.Context, name string) (*Site, error) {
	payload, _ := json.Marshal(map[string]string{"name": name})

	var site Site
	status, raw, err := c.do(ctx, http.MethodPost, "/sites", "application/json", bytes.NewReader(payload), &site)
	if err != nil {
		return nil, err
	}
	if status >= 200 && status < 300 {
		return &site, nil
	}
	if isQuotaStatus(status, raw) {
		return nil, fmt.Errorf("create site %q: %w", name, ErrQuotaExceeded)
	}
	return nil, fmt.Errorf("create site %q: status %d: %s", name, status, truncate(raw, 200))
}

// DeployZip uploads the FileSet as a zip archive and returns the deploy ID.
func (c *Client) DeployZip(ctx context.Context, siteID string, files fileset.FileSet) (string, error) {
	archive, err := zipFileSet(files)
	if err != nil {
		return "", err
	}

	var dep deployStatus
	status, raw, err := c.do(ctx, http.MethodPost, "/sites/"+siteID+"/deploys", "application/zip", bytes.NewReader(archive), &dep)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("deploy zip to site %s: status %d: %s", siteID, status, truncate(raw, 200))
	}
	return dep.ID, nil
}

// WaitForDeploy polls until the deploy reaches a terminal state or the
// context expires.
func (c *Client) WaitForDeploy(ctx context.Context, siteID, deployID string, interval time.Duration) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var dep deployStatus
		status, raw, err := c.do(ctx, http.MethodGet, "/sites/"+siteID+"/deploys/"+deployID, "", nil, &dep)
		if err != nil {
			return err
		}
		if status < 200 || status >= 300 {
			return fmt.Errorf("poll deploy %s: status %d: %s", deployID, status, truncate(raw, 200))
		}
		switch dep.State {
		case "ready", "current":
			return nil
		case "error", "failed":
			return fmt.Errorf("deploy %s failed during build", deployID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DeleteSite removes a site. 404 counts as success so cleanup is
// idempotent across stale local records.
func (c *Client) DeleteSite(ctx context.Context, siteID string) error {
	status, raw, err := c.do(ctx, http.MethodDelete, "/sites/"+siteID, "", nil, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound || (status >= 200 && status < 300) {
		return nil
	}
	return fmt.Errorf("delete site %s: status %d: %s", siteID, status, truncate(raw, 200))
}

// ListSites returns the sites visible to the API token.
func (c *Client) ListSites(ctx context.Context) ([]Site, error) {
	var sites []Site
	status, raw, err := c.do(ctx, http.MethodGet, "/sites", "", nil, &sites)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("list sites: status %d: %s", status, truncate(raw, 200))
	}
	return sites, nil
}

func isQuotaStatus(status int, body []byte) bool {
	if status == http.StatusPaymentRequired {
		return true
	}
	if status != http.StatusUnprocessableEntity && status != http.StatusTooManyRequests {
		return false
	}
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "limit") || strings.Contains(lower, "quota")
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// zipFileSet writes every non-empty file into an in-memory zip archive.
func zipFileSet(files fileset.FileSet) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, key := range fileset.Keys {
		content := files.Get(key)
		if content == "" {
			continue
		}
		w, err := zw.Create(key)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("deploy: no files to archive")
	}
	return buf.Bytes(), nil
}
