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

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/lekodex/lekodex/core"
	"github.com/lekodex/lekodex/storage"
)

// Catalog is the upstream the driver ingests from.
// registry.Client satisfies it.
type Catalog interface {
	ListProductCodes(ctx context.Context) ([]string, error)
	GetProductDetail(ctx context.Context, code string) (*core.Product, error)
	DownloadDocument(ctx context.Context, code, docType string, slowSource bool) ([]byte, error)
}

// Driver runs the ingestion state machine over the period's code list.
type Driver struct {
	catalog Catalog
	store   storage.CatalogRepository

	docType     string
	skipEU      bool
	targetCount int
	maxAttempts int

	primaryPacer *rate.Limiter
	slowPacer    *rate.Limiter

	logger *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithDocumentType sets the primary document type downloaded per product.
// Default is "spc".
func WithDocumentType(docType string) Option {
	return func(d *Driver) {
		d.docType = docType
	}
}

// WithSkipEU controls whether EU-registered products are skipped without
// calling the document fetcher. Default is true.
func WithSkipEU(skip bool) Option {
	return func(d *Driver) {
		d.skipEU = skip
	}
}

// WithTargetCount sets how many stored products end the run.
// Default is 10.
func WithTargetCount(n int) Option {
	return func(d *Driver) {
		d.targetCount = n
	}
}

// WithMaxAttempts sets the attempted-codes ceiling bounding worst-case
// runtime. Default is 10 times the target count.
func WithMaxAttempts(n int) Option {
	return func(d *Driver) {
		d.maxAttempts = n
	}
}

// WithPacing sets the inter-product rate limits for the primary and slow
// upstream sources. The driver self-throttles with these independently of
// the fetcher's own backoff.
func WithPacing(primary, slow rate.Limit) Option {
	return func(d *Driver) {
		d.primaryPacer = rate.NewLimiter(primary, 1)
		d.slowPacer = rate.NewLimiter(slow, 1)
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
	}
}

// NewDriver creates an ingestion driver.
func NewDriver(catalog Catalog, store storage.CatalogRepository, opts ...Option) (*Driver, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	d := &Driver{
		catalog:     catalog,
		store:       store,
		docType:     "spc",
		skipEU:      true,
		targetCount: 10,
		// One request per second for the primary source, one per three
		// seconds for the slow one.
		primaryPacer: rate.NewLimiter(rate.Limit(1), 1),
		slowPacer:    rate.NewLimiter(rate.Limit(1.0/3.0), 1),
		logger:       slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.maxAttempts <= 0 {
		d.maxAttempts = d.targetCount * 10
	}

	return d, nil
}

// Run fetches the period's code list once and processes codes in catalog
// order until the target count of stored products is reached, the attempt
// ceiling is hit, or the context is cancelled. Per-product failures are
// logged and isolated; only an unreachable catalog fails the run.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	codes, err := d.catalog.ListProductCodes(ctx)
	if err != nil {
		return nil, err
	}

	d.logger.Info("starting ingestion run",
		"codes", len(codes),
		"target", d.targetCount,
		"maxAttempts", d.maxAttempts)

	report := newReport()
	for _, code := range codes {
		if report.Stored >= d.targetCount || report.Attempted >= d.maxAttempts {
			break
		}
		// Cooperative stop between products, not between retry attempts.
		if err := ctx.Err(); err != nil {
			return report, err
		}

		status := d.processCode(ctx, code)
		report.record(code, status)
		d.logger.Info("processed product",
			"code", code,
			"status", status.String(),
			"stored", report.Stored,
			"attempted", report.Attempted)
	}

	d.logger.Info("ingestion run finished",
		"stored", report.Stored,
		"skippedEU", report.SkippedEU,
		"skippedEmpty", report.SkippedEmpty,
		"failed", report.Failed)
	return report, nil
}

// processCode takes one code through fetch, classify, download, and persist.
func (d *Driver) processCode(ctx context.Context, code string) Status {
	if err := d.primaryPacer.Wait(ctx); err != nil {
		return StatusFailed
	}

	product, err := d.catalog.GetProductDetail(ctx, code)
	if err != nil {
		d.logger.Warn("failed to fetch product detail", "code", code, "err", err)
		return StatusFailed
	}
	if product == nil {
		d.logger.Warn("product detail absent", "code", code)
		return StatusFailed
	}

	isEU := product.IsEURegistered()
	if isEU && d.skipEU {
		return StatusSkippedEU
	}

	if isEU {
		if err := d.slowPacer.Wait(ctx); err != nil {
			return StatusFailed
		}
	}

	data, err := d.catalog.DownloadDocument(ctx, code, d.docType, isEU)
	if err != nil {
		d.logger.Warn("document fetch failed", "code", code, "err", err)
		return StatusFailed
	}
	if len(data) == 0 {
		return StatusSkippedEmpty
	}

	if err := d.store.UpsertProduct(ctx, product); err != nil {
		d.logger.Warn("failed to persist product", "code", code, "err", err)
		return StatusFailed
	}

	doc := &core.Document{
		Code:  code,
		DocID: fmt.Sprintf("%s-%s", d.docType, code),
		Type:  d.docType,
		Name:  fmt.Sprintf("%s_%s.pdf", strings.ToUpper(d.docType), code),
		Data:  data,
	}
	if err := d.store.UpsertDocument(ctx, doc); err != nil {
		d.logger.Warn("failed to persist document", "code", code, "err", err)
		return StatusFailed
	}

	return StatusStored
}
