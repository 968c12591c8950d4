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

package generator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/code-weaver/internal/deploy"
	"github.com/your-org/code-weaver/internal/fallback"
	"github.com/your-org/code-weaver/internal/fileset"
	"github.com/your-org/code-weaver/internal/images"
	"github.com/your-org/code-weaver/internal/llm"
	"github.com/your-org/code-weaver/internal/metrics"
)

// Deployer publishes a finished FileSet. Implemented by deploy.Adapter.
type Deployer interface {
	Deploy(ctx context.Context, files fileset.FileSet, slug string) (*deploy.DeploymentResult, error)
}

// ImageSearcher resolves stock photos for the prompt builder. Implemented
// by images.Chain.
type ImageSearcher interface {
	Search(ctx context.Context, query string, count int) []images.Image
}

const promptImageCount = 6

// Config wires an Orchestrator. Completer and Policy are required;
// Deployer, Images and Metrics are optional and disabled when nil.
type Config struct {
	Completer   llm.Completer
	Policy      RotationPolicy
	Deployer    Deployer
	Images      ImageSearcher
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	MaxTokens   int
	Temperature float32
}

// Orchestrator runs the full generation pipeline. Its Generate method never
// returns an error for a non-empty prompt: model failures end in the
// deterministic fallback, deployment failures end in a FileSet without a
// live URL.
type Orchestrator struct {
	completer   llm.Completer
	policy      RotationPolicy
	deployer    Deployer
	images      ImageSearcher
	metrics     *metrics.Metrics
	logger      *zap.Logger
	maxTokens   int
	temperature float32
}

// New validates the rotation policy and builds an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = llm.DefaultTemperature
	}
	return &Orchestrator{
		completer:   cfg.Completer,
		policy:      cfg.Policy,
		deployer:    cfg.Deployer,
		images:      cfg.Images,
		metrics:     cfg.Metrics,
		logger:      logger,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// Generate runs one request through the pipeline and always produces
// exactly one FileSet. The only caller-visible failure is ErrEmptyPrompt,
// raised synchronously before any collaborator is contacted.
func (o *Orchestrator) Generate(ctx context.Context, req GenerationRequest) (*Result, error) {
	start := time.Now()
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	category := fallback.DetectCategory(req.Prompt)

	var imgs []images.Image
	if o.images != nil {
		imgs = o.images.Search(ctx, category.Label, promptImageCount)
	}

	userPrompt := BuildUserPrompt(req, imgs)
	policy := o.policy.withHint(req.ModelHint)

	invoke := func(ctx context.Context, model string) (fileset.FileSet, error) {
		raw, err := o.completer.Complete(ctx, llm.CompletionRequest{
			Model:        model,
			SystemPrompt: systemPrompt,
			UserPrompt:   userPrompt,
			MaxTokens:    o.maxTokens,
			Temperature:  o.temperature,
		})
		if err != nil {
			return nil, err
		}
		return ExtractFileSet(raw)
	}

	files, attempts, ok := policy.run(ctx, o.logger, invoke)
	for _, rec := range attempts {
		outcome := "success"
		if !rec.Success {
			outcome = string(rec.Outcome)
		}
		o.metrics.RecordAttempt(rec.Model, outcome)
	}

	result := &Result{Attempts: attempts}
	if ok {
		result.Files = files
	} else {
		result.Files = fallback.Generate(req.Prompt)
		result.UsedFallback = true
		o.metrics.RecordFallback()
		o.logger.Info("attempt budget exhausted, serving fallback site",
			zap.String("session_id", req.SessionID),
			zap.Int("attempts", len(attempts)),
			zap.String("category", category.ID))
	}

	if req.Deploy && o.deployer != nil {
		slug := req.SiteSlug
		if slug == "" {
			slug = fallback.ExtractSiteName(req.Prompt, category)
		}
		dep, err := o.deployer.Deploy(ctx, result.Files, slug)
		if err != nil {
			// Deployment is optional: the FileSet still goes back to the
			// caller, just without a live URL.
			o.metrics.RecordDeploy("failure")
			o.logger.Warn("deployment failed",
				zap.String("session_id", req.SessionID),
				zap.Error(err))
		} else {
			o.metrics.RecordDeploy("success")
			result.Deployment = dep
		}
	}

	o.metrics.ObserveGeneration(time.Since(start).Seconds())
	o.logger.Info("generation complete",
		zap.String("session_id", req.SessionID),
		zap.Bool("fallback", result.UsedFallback),
		zap.Bool("deployed", result.Deployment != nil),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}
