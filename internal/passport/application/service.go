package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"battery-passport/internal/label"
	"battery-passport/internal/observability/metrics"
	passport "battery-passport/internal/passport/domain"
)

// Config carries the externally visible settings of the passport service.
// Injected at construction; there is no module-level configuration.
type Config struct {
	// BaseURL is the public origin encoded into verification URLs, e.g.
	// "https://passport.example.com".
	BaseURL string
}

// LabelComposer renders the printable multi-page label document.
type LabelComposer interface {
	Render(pages []label.Page) ([]byte, error)
}

// PreviewRenderer renders the single on-screen confirmation image.
type PreviewRenderer interface {
	Render(url string) ([]byte, error)
}

// AssetStore persists rendered documents and can remove them again when an
// issuance aborts.
type AssetStore interface {
	SaveLabel(masterID string, data []byte) (string, error)
	SavePreview(previewID string, data []byte) (string, error)
	Remove(webPaths ...string)
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// IssueResult summarizes one completed issuance.
type IssueResult struct {
	MasterID    string   `json:"master_id"`
	PreviewID   string   `json:"preview_id"`
	RecordCount int      `json:"record_count"`
	LabelPath   string   `json:"label_path"`
	PreviewPath string   `json:"preview_path"`
	VerifyURLs  []string `json:"verify_urls"`
}

// PassportService orchestrates issuance: expand, render, persist. Either
// every record is persisted and the label document exists, or the whole
// operation fails with nothing left behind.
type PassportService struct {
	repo     passport.BatteryRepository
	composer LabelComposer
	preview  PreviewRenderer
	assets   AssetStore
	clock    Clock
	newID    passport.IDGenerator
	baseURL  string
}

// Option customizes the service.
type Option func(*PassportService)

// WithIDGenerator overrides master id generation. Tests use it to pin ids.
func WithIDGenerator(gen passport.IDGenerator) Option {
	return func(s *PassportService) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewPassportService constructs the service.
func NewPassportService(cfg Config, repo passport.BatteryRepository, composer LabelComposer, preview PreviewRenderer, assets AssetStore, clock Clock, opts ...Option) (*PassportService, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("passport service: empty base url")
	}
	if repo == nil {
		return nil, errors.New("passport service: nil repo")
	}
	if composer == nil {
		return nil, errors.New("passport service: nil composer")
	}
	if preview == nil {
		return nil, errors.New("passport service: nil preview renderer")
	}
	if assets == nil {
		return nil, errors.New("passport service: nil asset store")
	}
	if clock == nil {
		return nil, errors.New("passport service: nil clock")
	}
	service := &PassportService{
		repo:     repo,
		composer: composer,
		preview:  preview,
		assets:   assets,
		clock:    clock,
		newID:    passport.NewMasterID,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Issue registers a submission and produces its passport assets.
//
// Assets are rendered and written before the records are inserted, so a
// persisted record always has its label; if the insert fails, the written
// assets are removed again.
func (s *PassportService) Issue(ctx context.Context, sub passport.Submission) (*IssueResult, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveIssue(result, time.Since(start))
	}()

	exp, err := passport.Expand(sub, s.clock.Now(), s.newID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	pages := make([]label.Page, 0, len(exp.Records))
	urls := make([]string, 0, len(exp.Records))
	for i := range exp.Records {
		record := exp.Records[i]
		url := s.VerifyURL(record.ID)
		urls = append(urls, url)
		pages = append(pages, label.Page{
			ID:        record.ID,
			URL:       url,
			BrandText: record.BrandName,
			EPRText:   record.EPRNumber,
		})
	}

	renderStart := time.Now()
	labelDoc, err := s.composer.Render(pages)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	metrics.ObserveLabelRender(time.Since(renderStart))

	previewPNG, err := s.preview.Render(s.VerifyURL(exp.PreviewID))
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	labelPath, err := s.assets.SaveLabel(exp.Identifiers.MasterID, labelDoc)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	previewPath, err := s.assets.SavePreview(exp.PreviewID, previewPNG)
	if err != nil {
		result = metrics.ResultError
		s.assets.Remove(labelPath)
		return nil, err
	}

	if err := s.repo.InsertBatch(ctx, exp.Records); err != nil {
		result = metrics.ResultError
		s.assets.Remove(labelPath, previewPath)
		return nil, err
	}
	metrics.AddRecordsIssued(len(exp.Records))

	return &IssueResult{
		MasterID:    exp.Identifiers.MasterID,
		PreviewID:   exp.PreviewID,
		RecordCount: len(exp.Records),
		LabelPath:   labelPath,
		PreviewPath: previewPath,
		VerifyURLs:  urls,
	}, nil
}

// VerifyURL derives the public verification URL of an identifier. Ids are
// generated alphanumeric-safe, so plain concatenation needs no escaping.
func (s *PassportService) VerifyURL(id string) string {
	return s.baseURL + "/verify/" + id
}
