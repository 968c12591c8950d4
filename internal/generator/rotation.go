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
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/code-weaver/internal/fileset"
	"github.com/your-org/code-weaver/internal/llm"
)

// RotationPolicy walks an ordered model list under a global attempt budget.
// Each model gets at most RetriesPerModel consecutive attempts; MaxAttempts
// is the hard stop across all models. First success wins.
type RotationPolicy struct {
	Models          []string
	RetriesPerModel int
	MaxAttempts     int
}

// Validate rejects policies that cannot make progress or whose budget
// exceeds what the model list can consume.
func (p RotationPolicy) Validate() error {
	if len(p.Models) == 0 {
		return fmt.Errorf("rotation: at least one model required")
	}
	if p.RetriesPerModel < 1 {
		return fmt.Errorf("rotation: retries per model must be at least 1, got %d", p.RetriesPerModel)
	}
	if p.MaxAttempts < 1 {
		return fmt.Errorf("rotation: max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if max := len(p.Models) * p.RetriesPerModel; p.MaxAttempts > max {
		return fmt.Errorf("rotation: max attempts %d exceeds %d models x %d retries", p.MaxAttempts, len(p.Models), p.RetriesPerModel)
	}
	return nil
}

// withHint returns a copy of the policy with the hinted model moved to the
// front. Unknown hints leave the order untouched.
func (p RotationPolicy) withHint(hint string) RotationPolicy {
	if hint == "" {
		return p
	}
	for i, m := range p.Models {
		if m != hint {
			continue
		}
		reordered := make([]string, 0, len(p.Models))
		reordered = append(reordered, hint)
		reordered = append(reordered, p.Models[:i]...)
		reordered = append(reordered, p.Models[i+1:]...)
		p.Models = reordered
		break
	}
	return p
}

// invokeFunc runs one attempt against a named model and returns either a
// validated FileSet or a classified failure.
type invokeFunc func(ctx context.Context, model string) (fileset.FileSet, error)

// run executes the rotation until a model succeeds or the budget is spent.
// The returned bool reports success; on exhaustion the FileSet is nil and
// the caller falls through to the deterministic generator. Parse failures
// consume the attempt budget the same way gateway failures do, so a
// consistently malformed provider cannot burn unbounded spend.
func (p RotationPolicy) run(ctx context.Context, logger *zap.Logger, invoke invokeFunc) (fileset.FileSet, []AttemptRecord, bool) {
	attempts := make([]AttemptRecord, 0, p.MaxAttempts)
	total := 0

	for _, model := range p.Models {
		for retry := 0; retry < p.RetriesPerModel; retry++ {
			if total >= p.MaxAttempts {
				return nil, attempts, false
			}
			total++

			start := time.Now()
			fs, err := invoke(ctx, model)
			rec := AttemptRecord{
				Model:     model,
				StartedAt: start,
				Duration:  time.Since(start),
			}

			if err == nil {
				rec.Success = true
				attempts = append(attempts, rec)
				logger.Info("model attempt succeeded",
					zap.String("model", model),
					zap.Int("attempt", total),
					zap.Duration("duration", rec.Duration))
				return fs, attempts, true
			}

			rec.Outcome = llm.KindOf(err)
			attempts = append(attempts, rec)
			logger.Warn("model attempt failed",
				zap.String("model", model),
				zap.Int("attempt", total),
				zap.String("outcome", string(rec.Outcome)),
				zap.Duration("duration", rec.Duration),
				zap.Error(err))

			// Transient failures retry the same model while per-model
			// retries remain; anything else advances immediately.
			if !llm.Retryable(err) {
				break
			}
		}
	}

	return nil, attempts, false
}
