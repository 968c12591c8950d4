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

// Package images resolves stock photo URLs for generated sites. Providers
// are consulted in a fixed priority order and the first one that returns
// results wins; image search is strictly best-effort and never blocks a
// generation.
package images

import (
	"context"

	"go.uber.org/zap"
)

// Image is one curated photo reference handed to the prompt builder.
type Image struct {
	URL          string
	Photographer string
	Source       string
}

// Provider is a single stock photo backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, count int) ([]Image, error)
}

// Chain consults providers in order. Priority is fixed at construction:
// Unsplash, then Pixabay, then Pexels; providers without an API key are
// simply not in the chain.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

// NewChain builds a provider chain. A nil logger is replaced with a no-op
// logger.
func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, logger: logger}
}

// Search returns images from the first provider that produces any. A chain
// with no providers, or one where every provider fails, returns an empty
// slice and no error.
func (c *Chain) Search(ctx context.Context, query string, count int) []Image {
	for _, p := range c.providers {
		imgs, err := p.Search(ctx, query, count)
		if err != nil {
			c.logger.Warn("image provider failed",
				zap.String("provider", p.Name()),
				zap.String("query", query),
				zap.Error(err))
			continue
		}
		if len(imgs) == 0 {
			c.logger.Debug("image provider returned no results",
				zap.String("provider", p.Name()),
				zap.String("query", query))
			continue
		}
		c.logger.Debug("image provider succeeded",
			zap.String("provider", p.Name()),
			zap.String("query", query),
			zap.Int("count", len(imgs)))
		return imgs
	}
	return nil
}
