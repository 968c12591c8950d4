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

package deploy

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/your-org/code-weaver/internal/fileset"
)

// DeploymentRecord is the locally persisted memory of a deployed site. The
// quota cleanup pass deletes the oldest of these; sites created outside
// this service are never touched.
type DeploymentRecord struct {
	SiteID    string
	SiteName  string
	URL       string
	CreatedAt time.Time
}

// RecordStore persists deployment records. Implemented by the SQLite store.
type RecordStore interface {
	AddDeployment(ctx context.Context, rec DeploymentRecord) error
	OldestDeployments(ctx context.Context, n int) ([]DeploymentRecord, error)
	DeleteDeployment(ctx context.Context, siteID string) error
}

// DeploymentResult describes one successful publish.
type DeploymentResult struct {
	SiteID     string    `json:"site_id"`
	SiteName   string    `json:"site_name"`
	URL        string    `json:"url"`
	AdminURL   string    `json:"admin_url,omitempty"`
	DeployedAt time.Time `json:"deployed_at"`
}

// Adapter wraps the hosting client with quota handling: on a quota
// rejection it deletes the CleanupCount oldest locally recorded sites and
// retries the whole publish exactly once.
type Adapter struct {
	client       *Client
	records      RecordStore
	logger       *zap.Logger
	cleanupCount int
	pollInterval time.Duration
	buildTimeout time.Duration
}

// NewAdapter wires the adapter. cleanupCount defaults to 3 when
// non-positive; a nil logger becomes a no-op logger.
func NewAdapter(client *Client, records RecordStore, logger *zap.Logger, cleanupCount int, buildTimeout time.Duration) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cleanupCount <= 0 {
		cleanupCount = 3
	}
	if buildTimeout <= 0 {
		buildTimeout = 2 * time.Minute
	}
	return &Adapter{
		client:       client,
		records:      records,
		logger:       logger,
		cleanupCount: cleanupCount,
		pollInterval: 2 * time.Second,
		buildTimeout: buildTimeout,
	}
}

var siteNameSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

// siteName derives a provider-safe site name from the requested slug, with
// a random suffix to dodge name collisions across accounts.
func siteName(slug string) string {
	s := strings.ToLower(strings.TrimSpace(slug))
	s = siteNameSanitizer.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "weaver-site"
	}
	if len(s) > 40 {
		s = s[:40]
	}
	return s + "-" + uuid.NewString()[:8]
}

// Deploy publishes a FileSet. On quota rejection it runs one cleanup pass
// and retries once; any failure after that is returned to the caller, who
// treats deployment as optional.
func (a *Adapter) Deploy(ctx context.Context, files fileset.FileSet, slug string) (*DeploymentResult, error) {
	name := siteName(slug)

	site, err := a.client.CreateSite(ctx, name)
	if errors.Is(err, ErrQuotaExceeded) {
		a.logger.Warn("site quota exceeded, retiring oldest sites",
			zap.String("site_name", name),
			zap.Int("cleanup_count", a.cleanupCount))
		if cleanupErr := a.cleanupOldest(ctx); cleanupErr != nil {
			return nil, fmt.Errorf("quota cleanup: %w", cleanupErr)
		}
		site, err = a.client.CreateSite(ctx, name)
	}
	if err != nil {
		return nil, err
	}

	deployID, err := a.client.DeployZip(ctx, site.ID, files)
	if err != nil {
		return nil, err
	}

	buildCtx, cancel := context.WithTimeout(ctx, a.buildTimeout)
	defer cancel()
	if err := a.client.WaitForDeploy(buildCtx, site.ID, deployID, a.pollInterval); err != nil {
		return nil, err
	}

	result := &DeploymentResult{
		SiteID:     site.ID,
		SiteName:   site.Name,
		URL:        previewURL(site),
		AdminURL:   site.AdminURL,
		DeployedAt: time.Now().UTC(),
	}

	if a.records != nil {
		rec := DeploymentRecord{
			SiteID:    site.ID,
			SiteName:  site.Name,
			URL:       result.URL,
			CreatedAt: result.DeployedAt,
		}
		if err := a.records.AddDeployment(ctx, rec); err != nil {
			// The site is live; losing the local record only weakens
			// future quota cleanup.
			a.logger.Warn("failed to record deployment", zap.String("site_id", site.ID), zap.Error(err))
		}
	}

	a.logger.Info("site deployed",
		zap.String("site_id", result.SiteID),
		zap.String("url", result.URL))
	return result, nil
}

// cleanupOldest retires the oldest locally recorded sites, both remotely
// and from the record store. Individual delete failures are logged and
// skipped so one stale record cannot wedge the whole cleanup.
func (a *Adapter) cleanupOldest(ctx context.Context) error {
	if a.records == nil {
		return fmt.Errorf("no deployment records available for cleanup")
	}
	oldest, err := a.records.OldestDeployments(ctx, a.cleanupCount)
	if err != nil {
		return err
	}
	if len(oldest) == 0 {
		return fmt.Errorf("no recorded sites to retire")
	}

	for _, rec := range oldest {
		if err := a.client.DeleteSite(ctx, rec.SiteID); err != nil {
			a.logger.Warn("failed to delete site during cleanup",
				zap.String("site_id", rec.SiteID), zap.Error(err))
			continue
		}
		if err := a.records.DeleteDeployment(ctx, rec.SiteID); err != nil {
			a.logger.Warn("failed to drop deployment record",
				zap.String("site_id", rec.SiteID), zap.Error(err))
		}
		a.logger.Info("retired site for quota headroom",
			zap.String("site_id", rec.SiteID),
			zap.String("site_name", rec.SiteName),
			zap.Time("created_at", rec.CreatedAt))
	}
	return nil
}

func previewURL(site *Site) string {
	if site.SSLURL != "" {
		return site.SSLURL
	}
	return site.URL
}
