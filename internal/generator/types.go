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

// Package generator implements the website generation orchestrator: prompt
// construction, model rotation under a global attempt budget, response
// extraction, and the deterministic fallback handoff. Its single guarantee
// is that every well-formed request terminates in exactly one FileSet.
package generator

import (
	"errors"
	"time"

	"github.com/your-org/code-weaver/internal/deploy"
	"github.com/your-org/code-weaver/internal/fileset"
	"github.com/your-org/code-weaver/internal/llm"
)

// ErrEmptyPrompt is the only error Generate surfaces to callers. It is
// returned synchronously, before any external collaborator is contacted.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// GenerationRequest describes one user-triggered generation. It is
// immutable once dispatched.
type GenerationRequest struct {
	SessionID     string
	Prompt        string
	ModelHint     string
	EditMode      bool
	ExistingFiles fileset.FileSet
	Deploy        bool
	SiteSlug      string
}

// AttemptRecord captures one model invocation for diagnostics. Records are
// ephemeral; they are logged and counted but never persisted.
type AttemptRecord struct {
	Model     string
	StartedAt time.Time
	Duration  time.Duration
	Outcome   llm.FailureKind // empty on success
	Success   bool
}

// Result is the outcome of a generation: always exactly one FileSet, plus a
// DeploymentResult when a deploy was requested and succeeded. Deployment is
// nil (not zero-filled) on deploy failure, signaling the caller to present
// the FileSet without a live URL.
type Result struct {
	Files        fileset.FileSet
	Deployment   *deploy.DeploymentResult
	Attempts     []AttemptRecord
	UsedFallback bool
}
