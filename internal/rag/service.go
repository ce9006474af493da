// Package rag answers questions about La Roca Village by retrieving passages from the
// document index and composing them with a language model.
package rag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/villagerag/internal/indexer"
	"github.com/hyperjump/villagerag/internal/models"
	"github.com/hyperjump/villagerag/internal/prompt"
	"github.com/hyperjump/villagerag/internal/search"
	"github.com/hyperjump/villagerag/pkg/utils"
	"go.uber.org/zap"
)

const (
	defaultAnswerK       = 8
	defaultDiagnoseK     = 3
	defaultPreviewLength = 200

	unknownSource = "Desconocida"
)

// IndexProvider yields the index handle, building it on first use.
type IndexProvider interface {
	GetOrBuild(ctx context.Context) (*indexer.Index, error)
	Ready() bool
}

// Completer sends a prompt to a language model and returns its raw reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options tunes retrieval depth and diagnostics. Zero values select the defaults (8, 3, 200).
type Options struct {
	AnswerK       int
	DiagnoseK     int
	PreviewLength int
	Logger        *zap.Logger
}

// Service runs the answer pipeline. It is safe for concurrent use.
type Service struct {
	indexes    IndexProvider
	llm        Completer
	answerK    int
	diagnoseK  int
	previewLen int
	logger     *zap.Logger
}

// NewService creates a service over indexes and llm.
func NewService(indexes IndexProvider, llm Completer, opts Options) *Service {
	s := &Service{
		indexes:    indexes,
		llm:        llm,
		answerK:    opts.AnswerK,
		diagnoseK:  opts.DiagnoseK,
		previewLen: opts.PreviewLength,
		logger:     utils.OrNop(opts.Logger),
	}
	if s.answerK <= 0 {
		s.answerK = defaultAnswerK
	}
	if s.diagnoseK <= 0 {
		s.diagnoseK = defaultDiagnoseK
	}
	if s.previewLen <= 0 {
		s.previewLen = defaultPreviewLength
	}
	return s
}

func (s *Service) index(ctx context.Context) (*indexer.Index, error) {
	idx, err := s.indexes.GetOrBuild(ctx)
	if err != nil {
		s.logger.Error("index unavailable", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrIndexUnavailable, err)
	}
	return idx, nil
}

// Answer runs retrieval, prompt composition, synthesis and normalization for question.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	idx, err := s.index(ctx)
	if err != nil {
		return "", err
	}
	passages, err := search.Retrieve(ctx, idx, question, s.answerK)
	if err != nil {
		s.logger.Error("retrieval failed", zap.Error(err))
		return "", fmt.Errorf("retrieve: %w", err)
	}
	raw, err := s.llm.Complete(ctx, prompt.Compose(question, passages))
	if err != nil {
		s.logger.Error("answer synthesis failed", zap.Int("passages", len(passages)), zap.Error(err))
		return "", fmt.Errorf("synthesize answer: %w", err)
	}
	s.logger.Debug("answer synthesized", zap.Int("passages", len(passages)), zap.Int("raw_len", len(raw)))
	return Normalize(raw), nil
}

// Diagnose returns the top passages for question without calling the language model.
func (s *Service) Diagnose(ctx context.Context, question string) ([]models.Diagnostic, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	passages, err := search.Retrieve(ctx, idx, question, s.diagnoseK)
	if err != nil {
		s.logger.Error("retrieval failed", zap.Error(err))
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	out := make([]models.Diagnostic, len(passages))
	for i, p := range passages {
		source := p.Chunk.SourceID
		if source == "" {
			source = unknownSource
		}
		out[i] = models.Diagnostic{
			Rank:           p.Rank,
			Source:         source,
			Page:           models.PageLabel(p.Chunk.Page),
			ContentPreview: utils.Truncate(p.Chunk.Text, s.previewLen),
			ContentLength:  utf8.RuneCountInString(p.Chunk.Text),
		}
	}
	return out, nil
}

// Health reports whether the index handle exists. It never triggers a build.
func (s *Service) Health() models.Health {
	return models.Health{Ready: s.indexes.Ready()}
}
