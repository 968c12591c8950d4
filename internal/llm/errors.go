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

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// FailureKind is the closed error taxonomy every external collaborator is
// normalized into before any orchestration logic sees the failure. The
// rotation policy treats Timeout, GatewayError and ParseError identically;
// the distinction exists for diagnostics only.
type FailureKind string

const (
	FailureTimeout       FailureKind = "timeout"
	FailureGateway       FailureKind = "gateway_error"
	FailureParse         FailureKind = "parse_error"
	FailureQuotaExceeded FailureKind = "quota_exceeded"
	FailureOther         FailureKind = "other"
)

// Failure wraps a collaborator error with its taxonomy classification.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Message != "" {
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
	return string(f.Kind)
}

// Unwrap returns the underlying collaborator error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure creates a classified failure.
func NewFailure(kind FailureKind, message string, err error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: err}
}

// KindOf returns the taxonomy kind of an error, or FailureOther when the
// error was never classified.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return FailureOther
}

// Retryable reports whether a failure should count as a transient model
// failure for the rotation policy. Timeout, gateway and parse failures are
// all retryable; everything else stops the current model immediately.
func Retryable(err error) bool {
	switch KindOf(err) {
	case FailureTimeout, FailureGateway, FailureParse:
		return true
	default:
		return false
	}
}

// classifyProviderError maps raw chat-completion provider errors into the
// taxonomy. Provider-specific status codes never leak past this point.
func classifyProviderError(err error) *Failure {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewFailure(FailureTimeout, "completion request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewFailure(FailureTimeout, "completion request timed out", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return NewFailure(FailureGateway, apiErr.Message, err)
		case http.StatusRequestTimeout:
			return NewFailure(FailureTimeout, apiErr.Message, err)
		default:
			return NewFailure(FailureOther, apiErr.Message, err)
		}
	}

	return NewFailure(FailureOther, err.Error(), err)
}
