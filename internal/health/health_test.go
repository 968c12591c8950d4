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

package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestManager_Check(t *testing.T) {
	manager := NewManager("code-weaver", "1.0.0", zap.NewNop())

	manager.AddCheckerFunc("store", func(ctx context.Context) CheckResult {
		return CheckResult{
			Status:    StatusHealthy,
			Timestamp: time.Now(),
		}
	})

	manager.AddCheckerFunc("hosting", func(ctx context.Context) CheckResult {
		return CheckResult{
			Status:    StatusUnhealthy,
			Error:     "service is down",
			Timestamp: time.Now(),
		}
	})

	result := manager.Check(context.Background())

	// Overall status should be unhealthy due to one unhealthy dependency
	if result.Status != StatusUnhealthy {
		t.Errorf("Expected status to be unhealthy, got %s", result.Status)
	}

	if result.Service != "code-weaver" {
		t.Errorf("Expected service to be code-weaver, got %s", result.Service)
	}

	if len(result.Dependencies) != 2 {
		t.Errorf("Expected 2 dependencies, got %d", len(result.Dependencies))
	}

	if result.Dependencies["store"].Status != StatusHealthy {
		t.Errorf("Expected store dependency to be healthy, got %s", result.Dependencies["store"].Status)
	}

	if result.Dependencies["hosting"].Error != "service is down" {
		t.Errorf("Expected error message, got %s", result.Dependencies["hosting"].Error)
	}
}

func TestManager_Check_AllHealthy(t *testing.T) {
	manager := NewManager("code-weaver", "1.0.0", zap.NewNop())

	manager.AddCheckerFunc("store", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Timestamp: time.Now()}
	})
	manager.AddCheckerFunc("provider", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Timestamp: time.Now()}
	})

	result := manager.Check(context.Background())

	if result.Status != StatusHealthy {
		t.Errorf("Expected status to be healthy, got %s", result.Status)
	}
}

func TestManager_Check_DegradedStatus(t *testing.T) {
	manager := NewManager("code-weaver", "1.0.0", zap.NewNop())

	manager.AddCheckerFunc("store", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Timestamp: time.Now()}
	})
	manager.AddCheckerFunc("hosting", func(ctx context.Context) CheckResult {
		return CheckResult{
			Status:    StatusDegraded,
			Error:     "service is slow",
			Timestamp: time.Now(),
		}
	})

	result := manager.Check(context.Background())

	if result.Status != StatusDegraded {
		t.Errorf("Expected status to be degraded, got %s", result.Status)
	}
}

func TestManager_Check_Timeout(t *testing.T) {
	manager := NewManager("code-weaver", "1.0.0", zap.NewNop())
	manager.SetTimeout(100 * time.Millisecond)

	// Slow checker that takes longer than the manager timeout
	manager.AddCheckerFunc("slow", func(ctx context.Context) CheckResult {
		select {
		case <-time.After(200 * time.Millisecond):
			return CheckResult{Status: StatusHealthy, Timestamp: time.Now()}
		case <-ctx.Done():
			return CheckResult{
				Status:    StatusUnhealthy,
				Error:     "timeout",
				Timestamp: time.Now(),
			}
		}
	})

	result := manager.Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Expected status to be unhealthy due to timeout, got %s", result.Status)
	}
}

func TestDatabaseChecker(t *testing.T) {
	checker := DatabaseChecker("weaver-db", func(ctx context.Context) error {
		return nil
	})

	result := checker.Check(context.Background())

	if result.Status != StatusHealthy {
		t.Errorf("Expected status to be healthy, got %s", result.Status)
	}

	if result.Metadata["database"] != "weaver-db" {
		t.Errorf("Expected database metadata to be weaver-db, got %v", result.Metadata["database"])
	}
}

func TestDatabaseChecker_Unhealthy(t *testing.T) {
	checker := DatabaseChecker("weaver-db", func(ctx context.Context) error {
		return errors.New("connection failed")
	})

	result := checker.Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Expected status to be unhealthy, got %s", result.Status)
	}

	if result.Error == "" {
		t.Error("Expected error message to be set")
	}
}

func TestExternalServiceChecker(t *testing.T) {
	checker := ExternalServiceChecker("hosting", func(ctx context.Context) error {
		return nil
	})

	result := checker.Check(context.Background())

	if result.Status != StatusHealthy {
		t.Errorf("Expected status to be healthy, got %s", result.Status)
	}

	if result.Metadata["service"] != "hosting" {
		t.Errorf("Expected service metadata to be hosting, got %v", result.Metadata["service"])
	}
}

func TestExternalServiceChecker_Degraded(t *testing.T) {
	// Temporary errors degrade instead of failing outright
	checker := ExternalServiceChecker("hosting", func(ctx context.Context) error {
		return errors.New("timeout occurred")
	})

	result := checker.Check(context.Background())

	if result.Status != StatusDegraded {
		t.Errorf("Expected status to be degraded, got %s", result.Status)
	}
}

func TestExternalServiceChecker_Unhealthy(t *testing.T) {
	checker := ExternalServiceChecker("hosting", func(ctx context.Context) error {
		return errors.New("invalid credentials")
	})

	result := checker.Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Expected status to be unhealthy, got %s", result.Status)
	}
}

func TestIsTemporaryError(t *testing.T) {
	temporaryErrors := []error{
		errors.New("timeout occurred"),
		errors.New("connection refused"),
		errors.New("temporary failure in name resolution"),
		errors.New("network is unreachable"),
		errors.New("context deadline exceeded"),
	}

	for _, err := range temporaryErrors {
		if !isTemporaryError(err) {
			t.Errorf("Expected %v to be temporary error", err)
		}
	}

	nonTemporaryErrors := []error{
		errors.New("service unavailable"),
		errors.New("authentication failed"),
		errors.New("permission denied"),
	}

	for _, err := range nonTemporaryErrors {
		if isTemporaryError(err) {
			t.Errorf("Expected %v to not be temporary error", err)
		}
	}

	if isTemporaryError(nil) {
		t.Error("Expected nil error to not be temporary")
	}
}

func TestManager_HTTPHandler(t *testing.T) {
	manager := NewManager("code-weaver", "1.0.0", zap.NewNop())

	manager.AddCheckerFunc("store", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Timestamp: time.Now()}
	})

	handler := manager.HTTPHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, status)
	}

	if contentType := rr.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Expected content type application/json, got %s", contentType)
	}
}

func TestManager_HTTPHandler_MethodNotAllowed(t *testing.T) {
	manager := NewManager("code-weaver", "1.0.0", zap.NewNop())

	handler := manager.HTTPHandler()

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusMethodNotAllowed {
		t.Errorf("Expected status code %d, got %d", http.StatusMethodNotAllowed, status)
	}
}

func TestManager_HTTPHandler_ServiceUnavailable(t *testing.T) {
	manager := NewManager("code-weaver", "1.0.0", zap.NewNop())

	manager.AddCheckerFunc("hosting", func(ctx context.Context) CheckResult {
		return CheckResult{
			Status:    StatusUnhealthy,
			Error:     "service is down",
			Timestamp: time.Now(),
		}
	})

	handler := manager.HTTPHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusServiceUnavailable {
		t.Errorf("Expected status code %d, got %d", http.StatusServiceUnavailable, status)
	}
}
