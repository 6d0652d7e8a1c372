package ingest

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/time/rate"

	"github.com/lekodex/lekodex/core"
	"github.com/lekodex/lekodex/storage/badger"
)

// fakeCatalog is a Catalog test double with injectable behavior.
type fakeCatalog struct {
	codes     []string
	listErr   error
	details   map[string]*core.Product
	documents map[string][]byte
	docErr    map[string]error

	detailCalls   int
	downloadCalls int
}

func (f *fakeCatalog) ListProductCodes(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.codes, nil
}

func (f *fakeCatalog) GetProductDetail(ctx context.Context, code string) (*core.Product, error) {
	f.detailCalls++
	return f.details[code], nil
}

func (f *fakeCatalog) DownloadDocument(ctx context.Context, code, docType string, slowSource bool) ([]byte, error) {
	f.downloadCalls++
	if err := f.docErr[code]; err != nil {
		return nil, err
	}
	return f.documents[code], nil
}

func fastPacing() Option {
	return WithPacing(rate.Inf, rate.Inf)
}

func TestDriverEndToEnd(t *testing.T) {
	catalogRepo, factRepo, vectorRepo, backend, err := badger.NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); factRepo.Close(); catalogRepo.Close(); backend.Close() }()

	spc := make([]byte, 50)
	for i := range spc {
		spc[i] = 'x'
	}

	catalog := &fakeCatalog{
		codes: []string{"A1", "A2"},
		details: map[string]*core.Product{
			"A1": {Code: "A1", Name: "EU PRODUCT", RegistrationNumber: "EU/1/23"},
			"A2": {Code: "A2", Name: "LOCAL PRODUCT", RegistrationNumber: "07/098/72-C"},
		},
		documents: map[string][]byte{"A2": spc},
	}

	driver, err := NewDriver(catalog, catalogRepo, WithTargetCount(5), fastPacing())
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}

	report, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Stored != 1 {
		t.Fatalf("Expected 1 stored, got %d", report.Stored)
	}
	if report.SkippedEU != 1 {
		t.Fatalf("Expected 1 skipped EU, got %d", report.SkippedEU)
	}
	if report.Outcomes["A1"] != StatusSkippedEU || report.Outcomes["A2"] != StatusStored {
		t.Fatalf("Unexpected outcomes %v", report.Outcomes)
	}

	count, err := catalogRepo.CountDocuments(context.Background())
	if err != nil {
		t.Fatalf("Failed to count documents: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected exactly 1 document row, got %d", count)
	}

	stored, err := catalogRepo.GetProduct(context.Background(), "A2")
	if err != nil {
		t.Fatalf("Failed to get stored product: %v", err)
	}
	if stored.Name != "LOCAL PRODUCT" {
		t.Fatalf("Unexpected stored product %+v", stored)
	}
}

func TestDriverSkipsEUWithoutFetching(t *testing.T) {
	catalogRepo, factRepo, vectorRepo, backend, err := badger.NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); factRepo.Close(); catalogRepo.Close(); backend.Close() }()

	catalog := &fakeCatalog{
		codes: []string{"E1"},
		details: map[string]*core.Product{
			"E1": {Code: "E1", RegistrationNumber: "EU/5/10"},
		},
	}

	driver, err := NewDriver(catalog, catalogRepo, fastPacing())
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}

	report, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Outcomes["E1"] != StatusSkippedEU {
		t.Fatalf("Expected skipped EU, got %v", report.Outcomes["E1"])
	}
	if catalog.downloadCalls != 0 {
		t.Fatalf("Expected no download calls, got %d", catalog.downloadCalls)
	}
}

func TestDriverEUProcessedWhenPolicyDisabled(t *testing.T) {
	catalogRepo, factRepo, vectorRepo, backend, err := badger.NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); factRepo.Close(); catalogRepo.Close(); backend.Close() }()

	catalog := &fakeCatalog{
		codes: []string{"E1"},
		details: map[string]*core.Product{
			"E1": {Code: "E1", RegistrationNumber: "EU/5/10"},
		},
		documents: map[string][]byte{"E1": []byte("payload")},
	}

	driver, err := NewDriver(catalog, catalogRepo, WithSkipEU(false), fastPacing())
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}

	report, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Outcomes["E1"] != StatusStored {
		t.Fatalf("Expected stored, got %v", report.Outcomes["E1"])
	}
}

func TestDriverSkippedEmptyAndAbsentDetail(t *testing.T) {
	catalogRepo, factRepo, vectorRepo, backend, err := badger.NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); factRepo.Close(); catalogRepo.Close(); backend.Close() }()

	catalog := &fakeCatalog{
		codes: []string{"NOPAYLOAD", "NODETAIL"},
		details: map[string]*core.Product{
			"NOPAYLOAD": {Code: "NOPAYLOAD", RegistrationNumber: "07/098/72-C"},
		},
		documents: map[string][]byte{"NOPAYLOAD": {}},
	}

	driver, err := NewDriver(catalog, catalogRepo, fastPacing())
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}

	report, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Outcomes["NOPAYLOAD"] != StatusSkippedEmpty {
		t.Fatalf("Expected skipped empty, got %v", report.Outcomes["NOPAYLOAD"])
	}
	if report.Outcomes["NODETAIL"] != StatusFailed {
		t.Fatalf("Expected failed for absent detail, got %v", report.Outcomes["NODETAIL"])
	}
}

func TestDriverStopsAtTargetCount(t *testing.T) {
	catalogRepo, factRepo, vectorRepo, backend, err := badger.NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); factRepo.Close(); catalogRepo.Close(); backend.Close() }()

	catalog := &fakeCatalog{
		codes:     []string{"P1", "P2", "P3"},
		details:   map[string]*core.Product{},
		documents: map[string][]byte{},
	}
	for _, code := range catalog.codes {
		catalog.details[code] = &core.Product{Code: code, RegistrationNumber: "07/098/72-C"}
		catalog.documents[code] = []byte("payload")
	}

	driver, err := NewDriver(catalog, catalogRepo, WithTargetCount(2), fastPacing())
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}

	report, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Stored != 2 || report.Attempted != 2 {
		t.Fatalf("Expected run to stop at target, got stored=%d attempted=%d", report.Stored, report.Attempted)
	}
}

func TestDriverStopsAtMaxAttempts(t *testing.T) {
	catalogRepo, factRepo, vectorRepo, backend, err := badger.NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); factRepo.Close(); catalogRepo.Close(); backend.Close() }()

	// Every detail is absent, so nothing ever stores.
	catalog := &fakeCatalog{
		codes:   []string{"F1", "F2", "F3", "F4", "F5"},
		details: map[string]*core.Product{},
	}

	driver, err := NewDriver(catalog, catalogRepo, WithTargetCount(1), WithMaxAttempts(2), fastPacing())
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}

	report, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Attempted != 2 {
		t.Fatalf("Expected 2 attempts, got %d", report.Attempted)
	}
	if report.Failed != 2 {
		t.Fatalf("Expected 2 failures, got %d", report.Failed)
	}
}

func TestDriverCatalogUnavailableIsFatal(t *testing.T) {
	catalogRepo, factRepo, vectorRepo, backend, err := badger.NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); factRepo.Close(); catalogRepo.Close(); backend.Close() }()

	unavailable := errors.New("catalog down")
	catalog := &fakeCatalog{listErr: unavailable}

	driver, err := NewDriver(catalog, catalogRepo, fastPacing())
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}

	_, err = driver.Run(context.Background())
	if !errors.Is(err, unavailable) {
		t.Fatalf("Expected fatal catalog error, got %v", err)
	}
}

func TestDriverDocumentFetchFailureIsIsolated(t *testing.T) {
	catalogRepo, factRepo, vectorRepo, backend, err := badger.NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); factRepo.Close(); catalogRepo.Close(); backend.Close() }()

	catalog := &fakeCatalog{
		codes: []string{"BAD", "GOOD"},
		details: map[string]*core.Product{
			"BAD":  {Code: "BAD", RegistrationNumber: "07/098/72-C"},
			"GOOD": {Code: "GOOD", RegistrationNumber: "07/098/72-C"},
		},
		documents: map[string][]byte{"GOOD": []byte("payload")},
		docErr:    map[string]error{"BAD": errors.New("document fetch failed")},
	}

	driver, err := NewDriver(catalog, catalogRepo, fastPacing())
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}

	report, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Outcomes["BAD"] != StatusFailed {
		t.Fatalf("Expected failed, got %v", report.Outcomes["BAD"])
	}
	if report.Outcomes["GOOD"] != StatusStored {
		t.Fatalf("Expected run to continue past failure, got %v", report.Outcomes["GOOD"])
	}
}
