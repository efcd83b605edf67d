// Package convert runs the notice-to-seev.001 pipeline:
// read, extract, summarize, confirm, render, persist and notify.
package convert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coolbeans/seevgen/pkg/archive"
	"github.com/coolbeans/seevgen/pkg/extract"
	"github.com/coolbeans/seevgen/pkg/logging"
	"github.com/coolbeans/seevgen/pkg/metrics"
	"github.com/coolbeans/seevgen/pkg/notify"
)

// Reader returns the text of a notice file.
type Reader interface {
	Read(ctx context.Context, path string) (string, error)
}

// Renderer turns a record into a seev.001 document.
type Renderer interface {
	Render(rec *extract.Record) ([]byte, error)
}

// Store persists generated documents.
type Store interface {
	Save(document []byte, opts archive.SaveOptions) (*archive.Entry, error)
}

// Notifier delivers generated documents.
type Notifier interface {
	Send(ctx context.Context, d notify.Delivery) error
}

// Result is the outcome of one conversion.
type Result struct {
	Record   *extract.Record
	Summary  string
	Document []byte
	// Entry is nil when no Store is configured.
	Entry *archive.Entry
}

// Service sequences the conversion stages.
type Service struct {
	reader    Reader
	extractor *extract.Extractor
	renderer  Renderer
	store     Store
	notifier  Notifier
	confirmer Confirmer
	metrics   *metrics.Metrics
	logger    *logging.Logger
	now       func() time.Time
}

// Option is a functional option for configuring the Service.
type Option func(*Service)

// WithStore persists documents. Without a store, documents are only
// returned.
func WithStore(s Store) Option {
	return func(svc *Service) {
		svc.store = s
	}
}

// WithNotifier delivers persisted documents.
func WithNotifier(n Notifier) Option {
	return func(svc *Service) {
		svc.notifier = n
	}
}

// WithConfirmer asks before rendering. The default confirms everything.
func WithConfirmer(c Confirmer) Option {
	return func(svc *Service) {
		svc.confirmer = c
	}
}

// WithMetrics records conversion outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(svc *Service) {
		svc.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(svc *Service) {
		svc.logger = l
	}
}

// WithClock sets the time used for archive names.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		svc.now = now
	}
}

// NewService creates a Service.
func NewService(reader Reader, extractor *extract.Extractor, renderer Renderer, options ...Option) *Service {
	svc := &Service{
		reader:    reader,
		extractor: extractor,
		renderer:  renderer,
		confirmer: AlwaysConfirm{},
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Extract reads and extracts a notice without rendering anything.
func (s *Service) Extract(ctx context.Context, path string) (*extract.Record, error) {
	ctx = logging.WithNotice(ctx, path)
	text, err := s.read(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.extract(ctx, text), nil
}

// ConvertFile runs the full pipeline for the notice at path.
func (s *Service) ConvertFile(ctx context.Context, path string) (*Result, error) {
	ctx = logging.WithRunID(logging.WithNotice(ctx, path), uuid.NewString())
	start := s.now()

	text, err := s.read(ctx, path)
	if err != nil {
		return nil, err
	}
	result, err := s.convert(ctx, text, path)
	if err == nil && s.metrics != nil {
		s.metrics.ConversionDuration.Observe(s.now().Sub(start).Seconds())
	}
	return result, err
}

// ConvertText runs the pipeline for text already in memory. source is
// recorded in the archive manifest.
func (s *Service) ConvertText(ctx context.Context, text, source string) (*Result, error) {
	ctx = logging.WithRunID(ctx, uuid.NewString())
	return s.convert(ctx, text, source)
}

func (s *Service) convert(ctx context.Context, text, source string) (*Result, error) {
	rec := s.extract(ctx, text)
	result := &Result{Record: rec, Summary: FormatSummary(rec)}

	ok, err := s.confirmer.Confirm(ctx, result.Summary)
	if err != nil {
		return nil, s.fail(ctx, StageConfirm, err)
	}
	if !ok {
		s.logger.Info(ctx, "generation cancelled")
		return nil, &StageError{Stage: StageConfirm, Err: ErrCancelled}
	}

	document, err := s.renderer.Render(rec)
	if err != nil {
		return nil, s.fail(ctx, StageRender, err)
	}
	result.Document = document

	if s.store != nil {
		entry, err := s.store.Save(document, archive.SaveOptions{
			Source:     source,
			SourceText: []byte(text),
			Record:     rec,
			Now:        s.now(),
		})
		if err != nil {
			return nil, s.fail(ctx, StagePersist, err)
		}
		result.Entry = entry
		s.logger.Info(ctx, "document written",
			zap.String("file", entry.File),
			zap.String("entry", entry.ID),
		)
	}

	if s.metrics != nil {
		s.metrics.NoticesTotal.WithLabelValues(string(rec.MeetingType)).Inc()
		s.metrics.ResolutionsTotal.Add(float64(len(rec.Resolutions)))
	}

	if s.notifier != nil && result.Entry != nil {
		err := s.notifier.Send(ctx, notify.Delivery{
			FileName: result.Entry.File,
			Document: document,
			Record:   rec,
		})
		if err != nil {
			return result, s.fail(ctx, StageNotify, err)
		}
	}

	return result, nil
}

func (s *Service) read(ctx context.Context, path string) (string, error) {
	text, err := s.reader.Read(ctx, path)
	if err != nil {
		return "", s.fail(ctx, StageRead, err)
	}
	s.logger.Debug(ctx, "notice read", zap.Int("chars", len([]rune(text))))
	return text, nil
}

func (s *Service) extract(ctx context.Context, text string) *extract.Record {
	rec := s.extractor.Extract(text)
	coverage := rec.Coverage()
	for field, found := range coverage {
		if !found {
			s.logger.Debug(ctx, "field not found", zap.String("field", field))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordCoverage(coverage)
	}
	s.logger.Info(ctx, "notice extracted",
		zap.String("meeting_type", string(rec.MeetingType)),
		zap.String("language", string(rec.Language)),
		zap.String("company", rec.CompanyName),
		zap.Int("resolutions", len(rec.Resolutions)),
	)
	return rec
}

func (s *Service) fail(ctx context.Context, stage Stage, err error) error {
	if s.metrics != nil {
		s.metrics.FailuresTotal.WithLabelValues(string(stage)).Inc()
	}
	s.logger.Error(ctx, "stage failed", zap.String("stage", string(stage)), zap.Error(err))
	return &StageError{Stage: stage, Err: err}
}
