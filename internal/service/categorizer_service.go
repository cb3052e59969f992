package service

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// CategorizerImpl implements ports.Categorizer on top of the external
// zero-shot classifier. Notes are sent in one batch; results keep the input
// order.
type CategorizerImpl struct {
	classifier ports.Classifier
	log        zerolog.Logger
}

// NewCategorizer creates a new CategorizerImpl.
func NewCategorizer(classifier ports.Classifier, log zerolog.Logger) *CategorizerImpl {
	return &CategorizerImpl{classifier: classifier, log: log}
}

// Categorize maps each note onto one of the candidate categories. A
// classifier failure surfaces as a service-unavailable error; callers decide
// whether that is fatal for their report.
func (s *CategorizerImpl) Categorize(ctx context.Context, notes []string, categories []domain.Category) ([]domain.Category, error) {
	if len(notes) == 0 {
		return nil, nil
	}

	labels := make([]string, len(categories))
	for i, c := range categories {
		labels[i] = string(c)
	}

	results, err := s.classifier.Classify(ctx, notes, labels)
	if err != nil {
		return nil, apperror.ErrClassifierUnavailable(err)
	}
	if len(results) != len(notes) {
		return nil, apperror.ErrClassifierUnavailable(
			fmt.Errorf("classifier returned %d results for %d notes", len(results), len(notes)))
	}

	out := make([]domain.Category, len(results))
	for i, r := range results {
		out[i] = domain.CategoryFromLabel(r.Top())
	}

	s.log.Debug().Int("notes", len(notes)).Msg("notes categorized")
	return out, nil
}
