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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lekodex/lekodex/core"
	"github.com/lekodex/lekodex/retry"
)

// Client talks to the medicinal product catalog API: the period product
// list, per-code metadata, and document downloads.
type Client struct {
	cfg    *Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a catalog client from the given configuration.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default().With("component", "registry"),
	}, nil
}

// flexString decodes a JSON value that may arrive as a string, number,
// boolean, or null. The upstream catalog is not consistent about scalar
// types, so every metadata field is normalized to its textual form.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

// productPayload mirrors the catalog's detail response.
type productPayload struct {
	Code               flexString `json:"kodSUKL"`
	Name               flexString `json:"nazev"`
	Strength           flexString `json:"sila"`
	Form               flexString `json:"lekovaFormaKod"`
	Packaging          flexString `json:"baleni"`
	Route              flexString `json:"cestaKod"`
	Supplement         flexString `json:"doplnek"`
	Container          flexString `json:"obalKod"`
	Holder             flexString `json:"drzitelKod"`
	HolderCountry      flexString `json:"zemeDrziteleKod"`
	RegistrationStatus flexString `json:"stavRegistraceKod"`
	ATCCode            flexString `json:"ATCkod"`
	RegistrationNumber flexString `json:"registracniCislo"`
	DDDAmount          flexString `json:"dddMnozstvi"`
	DDDUnit            flexString `json:"dddMnozstviJednotka"`
	DDDPack            flexString `json:"dddBaleni"`
	Dispensing         flexString `json:"zpusobVydejeKod"`
	Expiration         flexString `json:"expirace"`
	ExpirationUnit     flexString `json:"expiraceJednotka"`
	RegisteredName     flexString `json:"registrovanyNazevLP"`
	SafetyFeatures     flexString `json:"ochrannePrvky"`
	PackLanguage       flexString `json:"jazykObalu"`
	RegistrationDate   flexString `json:"datumRegistrace"`
}

func (p *productPayload) toProduct() *core.Product {
	return &core.Product{
		Code:               string(p.Code),
		Name:               string(p.Name),
		Strength:           string(p.Strength),
		Form:               string(p.Form),
		Packaging:          string(p.Packaging),
		Route:              string(p.Route),
		Supplement:         string(p.Supplement),
		Container:          string(p.Container),
		Holder:             string(p.Holder),
		HolderCountry:      string(p.HolderCountry),
		RegistrationStatus: string(p.RegistrationStatus),
		ATCCode:            string(p.ATCCode),
		RegistrationNumber: string(p.RegistrationNumber),
		DDDAmount:          string(p.DDDAmount),
		DDDUnit:            string(p.DDDUnit),
		DDDPack:            string(p.DDDPack),
		Dispensing:         string(p.Dispensing),
		Expiration:         string(p.Expiration),
		ExpirationUnit:     string(p.ExpirationUnit),
		RegisteredName:     string(p.RegisteredName),
		SafetyFeatures:     string(p.SafetyFeatures),
		PackLanguage:       string(p.PackLanguage),
		RegistrationDate:   string(p.RegistrationDate),
	}
}

// ListProductCodes fetches the product code list for the configured
// reporting period, preserving upstream order.
func (c *Client) ListProductCodes(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/lecive-pripravky?obdobi=%s&uvedeneCeny=false&typSeznamu=dlpo", c.cfg.BaseURL, c.cfg.Period)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: product list returned status %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	var raw []flexString
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: malformed product list: %w", ErrCatalogUnavailable, err)
	}

	codes := make([]string, 0, len(raw))
	for _, code := range raw {
		codes = append(codes, string(code))
	}

	c.logger.Info("fetched product code list", "period", c.cfg.Period, "count", len(codes))
	return codes, nil
}

// GetProductDetail fetches metadata for one product code.
// Returns (nil, nil) when the upstream answers with a well-formed but
// empty payload; network and protocol failures wrap ErrCatalogUnavailable.
func (c *Client) GetProductDetail(ctx context.Context, code string) (*core.Product, error) {
	url := fmt.Sprintf("%s/lecive-pripravky/%s", c.cfg.BaseURL, code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: detail for %s returned status %d", ErrCatalogUnavailable, code, resp.StatusCode)
	}

	var payload productPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed detail for %s: %w", ErrCatalogUnavailable, code, err)
	}

	if payload.Code == "" {
		return nil, nil
	}

	product := payload.toProduct()
	// Catalog detail responses occasionally omit the code field echo;
	// the requested code is authoritative either way.
	product.Code = code
	return product, nil
}

// DownloadDocument fetches the binary document of the given type for a
// product code. Rate-limited and transient failures are retried under the
// configured policy; exhausting retries yields empty bytes and no error,
// which callers treat as "no document available". Non-retryable protocol
// errors wrap ErrDocumentFetch.
func (c *Client) DownloadDocument(ctx context.Context, code, docType string, slowSource bool) ([]byte, error) {
	// Slow upstreams get an unconditional pause before the first attempt.
	if slowSource && c.cfg.SlowSourceDelay > 0 {
		timer := time.NewTimer(c.cfg.SlowSourceDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	url := fmt.Sprintf("%s/dokumenty/%s/%s", c.cfg.BaseURL, code, docType)

	policy := retry.Policy{
		MaxAttempts: c.cfg.MaxRetries,
		Backoff: func(attempt int, err error) time.Duration {
			if errors.Is(err, ErrRateLimited) {
				delay := c.cfg.RateLimitDelay
				for i := 1; i < attempt; i++ {
					delay *= 2
				}
				return delay
			}
			return c.cfg.TransientDelay
		},
		Retryable: func(err error) bool {
			return !errors.Is(err, ErrDocumentFetch)
		},
	}

	var data []byte
	err := policy.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			data, err = io.ReadAll(resp.Body)
			return err
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s/%s", ErrRateLimited, code, docType)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return fmt.Errorf("%w: %s/%s returned status %d", ErrDocumentFetch, code, docType, resp.StatusCode)
		default:
			return fmt.Errorf("document %s/%s returned status %d", code, docType, resp.StatusCode)
		}
	})

	if err != nil {
		if errors.Is(err, ErrDocumentFetch) {
			return nil, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		// Retries exhausted: report "no document" rather than failing
		// the product outright.
		c.logger.Warn("document unavailable after retries", "code", code, "docType", docType, "error", err)
		return []byte{}, nil
	}

	return data, nil
}
