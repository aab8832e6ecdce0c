package service

import (
	"context"

	"github.com/smallbiznis/invoicer/internal/invoice/domain"
	"gorm.io/gorm"
)

func (s *Service) MarkSent(ctx context.Context, id string) (domain.Document, error) {
	return s.transition(ctx, id, domain.DocumentStatusSent)
}

func (s *Service) MarkPaid(ctx context.Context, id string) (domain.Document, error) {
	return s.transition(ctx, id, domain.DocumentStatusPaid)
}

func (s *Service) Void(ctx context.Context, id string) (domain.Document, error) {
	return s.transition(ctx, id, domain.DocumentStatusVoid)
}

func (s *Service) transition(ctx context.Context, id string, to domain.DocumentStatus) (domain.Document, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.Document{}, err
	}
	docID, err := parseID(id, domain.ErrInvalidDocumentID)
	if err != nil {
		return domain.Document{}, err
	}

	var updated domain.Document
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.repo.FindByID(ctx, tx, orgID, docID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrDocumentNotFound
		}
		if err := doc.Transition(to, s.clock.Now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, doc); err != nil {
			return err
		}
		updated = *doc
		return nil
	})
	if err != nil {
		return domain.Document{}, err
	}

	s.metrics.RecordStatusTransition(ctx, string(updated.Type), string(updated.Status))
	s.audit(ctx, "document."+string(to), &updated)
	return updated, nil
}
