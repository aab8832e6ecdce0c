package service

import (
	"context"

	"github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/format"
	"github.com/smallbiznis/invoicer/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// numberIndex is the unique index guarding invoice numbers.
const numberIndex = "ux_documents_org_number"

// saveNumbered assigns the next number of the document's bucket and inserts
// the document with its items. A concurrent writer taking the same number
// trips the (org_id, invoice_number) unique index; the whole transaction is
// then retried with a fresh read, up to NumberRetryAttempts times.
func (s *Service) saveNumbered(ctx context.Context, doc *domain.Document, precheck func(tx *gorm.DB) error) error {
	bucketPrefix, err := format.BucketPrefix(doc.Type, doc.CreatedAt)
	if err != nil {
		return err
	}

	retries := s.config.Get().NumberRetryAttempts
	if retries < 0 {
		retries = 0
	}

	for attempt := 0; ; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if precheck != nil {
				if err := precheck(tx); err != nil {
					return err
				}
			}

			last, err := s.repo.LastNumberInBucket(ctx, tx, doc.OrgID, doc.Type, bucketPrefix)
			if err != nil {
				return err
			}
			seq, err := format.NextSequence(last, bucketPrefix)
			if err != nil {
				return err
			}
			number, err := format.Number(doc.Type, doc.CreatedAt, seq)
			if err != nil {
				return err
			}
			doc.InvoiceNumber = number

			if err := s.repo.Insert(ctx, tx, doc); err != nil {
				return err
			}
			return s.repo.InsertItems(ctx, tx, doc.Items)
		})
		if err == nil {
			return nil
		}
		collided, checkErr := s.isNumberCollision(ctx, doc, err)
		if checkErr != nil {
			doc.InvoiceNumber = ""
			return checkErr
		}
		if !collided {
			doc.InvoiceNumber = ""
			return err
		}

		s.metrics.RecordNumberCollision(ctx, string(doc.Type))
		s.log.Warn("invoice number collision",
			zap.String("org_id", doc.OrgID.String()),
			zap.String("invoice_number", doc.InvoiceNumber),
			zap.Int("attempt", attempt+1),
		)
		doc.InvoiceNumber = ""
		if attempt >= retries {
			return domain.ErrDuplicateInvoiceNumber
		}
	}
}

// isNumberCollision reports whether err is a unique violation on the invoice
// number. Other unique indexes (ids, ulid) are not retried. When the driver
// hides the index name, the number is looked up instead.
func (s *Service) isNumberCollision(ctx context.Context, doc *domain.Document, err error) (bool, error) {
	if !db.IsDuplicateKeyErr(err) {
		return false, nil
	}
	if name := db.ViolatedConstraint(err); name != "" {
		return name == numberIndex, nil
	}
	return s.repo.NumberTaken(ctx, s.db, doc.OrgID, doc.InvoiceNumber)
}
