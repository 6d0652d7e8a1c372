// Copyright 2025 Lekodex Labs
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

package registry

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the regulatory catalog client.
type Config struct {
	// BaseURL is the root of the catalog API.
	// Example: "https://prehledy.sukl.cz/dlp/v1"
	BaseURL string

	// Period is the reporting period whose product list is fetched.
	// Example: "2025.07"
	Period string

	// DocumentType is the primary document type downloaded per product.
	// Example: "spc" for the summary of product characteristics
	DocumentType string

	// MaxRetries is the number of download attempts per document.
	// Default: 3
	MaxRetries int

	// RateLimitDelay is the base backoff after an HTTP 429 response.
	// The delay doubles on each retry (5s, 10s, 20s, ...).
	RateLimitDelay time.Duration

	// TransientDelay is the fixed wait after any other retryable failure.
	TransientDelay time.Duration

	// SlowSourceDelay is an extra pre-request pause for documents served
	// by a slower upstream.
	SlowSourceDelay time.Duration

	// Timeout bounds a single HTTP request.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the catalog API root URL.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithPeriod sets the reporting period.
func WithPeriod(period string) ConfigOption {
	return func(c *Config) {
		c.Period = period
	}
}

// WithDocumentType sets the primary document type.
func WithDocumentType(docType string) ConfigOption {
	return func(c *Config) {
		c.DocumentType = docType
	}
}

// WithMaxRetries sets the per-document download attempt count.
func WithMaxRetries(n int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithRateLimitDelay sets the base backoff after a 429 response.
func WithRateLimitDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RateLimitDelay = d
	}
}

// WithTransientDelay sets the wait after other retryable failures.
func WithTransientDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.TransientDelay = d
	}
}

// WithSlowSourceDelay sets the extra pre-request pause for slow upstreams.
func WithSlowSourceDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.SlowSourceDelay = d
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// DefaultConfig returns a Config with the production catalog endpoint and
// the pacing the upstream tolerates.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "https://prehledy.sukl.cz/dlp/v1",
		Period:          "2025.07",
		DocumentType:    "spc",
		MaxRetries:      3,
		RateLimitDelay:  5 * time.Second,
		TransientDelay:  2 * time.Second,
		SlowSourceDelay: 3 * time.Second,
		Timeout:         60 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return errors.New("registry config: BaseURL is required")
	}
	if c.Period == "" {
		return errors.New("registry config: Period is required")
	}
	if c.DocumentType == "" {
		return errors.New("registry config: DocumentType is required")
	}
	if c.MaxRetries <= 0 {
		return errors.New("registry config: MaxRetries must be positive")
	}
	return nil
}
