// Package format renders and parses document numbers such as
// INV-2026-10-0007.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/invoicer/internal/invoice/domain"
)

var (
	seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)
	seqAnyRe = regexp.MustCompile(`\{SEQ\d*\}`)
)

// DefaultTemplate numbers documents per (type, year, month) bucket.
// Sequences above 9999 are printed unpadded and no longer sort after
// earlier numbers in the bucket.
const DefaultTemplate = "{PREFIX}-{YYYY}-{MM}-{SEQ4}"

const (
	InvoicePrefix  = "INV"
	EstimatePrefix = "EST"
)

// Prefix returns the number prefix of a document type.
func Prefix(docType domain.DocumentType) (string, error) {
	switch docType {
	case domain.DocumentTypeInvoice:
		return InvoicePrefix, nil
	case domain.DocumentTypeEstimate:
		return EstimatePrefix, nil
	default:
		return "", domain.ErrInvalidDocumentType
	}
}

// Number formats the number of the seq-th document of docType in the
// bucket of t.
func Number(docType domain.DocumentType, t time.Time, seq int64) (string, error) {
	prefix, err := Prefix(docType)
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(DefaultTemplate, prefix, t, seq)
}

// BucketPrefix returns the fixed part of every number in the bucket of
// (docType, t), e.g. INV-2026-10-.
func BucketPrefix(docType domain.DocumentType, t time.Time) (string, error) {
	prefix, err := Prefix(docType)
	if err != nil {
		return "", err
	}
	return TemplateBucketPrefix(DefaultTemplate, prefix, t)
}

// TemplateBucketPrefix renders the part of template that precedes the
// sequence token. The sequence must be the last token of the template.
func TemplateBucketPrefix(template, prefix string, t time.Time) (string, error) {
	loc := seqAnyRe.FindStringIndex(template)
	if loc == nil || loc[1] != len(template) {
		return "", fmt.Errorf("invoice number template must end with a sequence token: %s", template)
	}
	head := replaceDateTokens(template[:loc[0]], prefix, t)
	if strings.ContainsAny(head, "{}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", head)
	}
	return head, nil
}

// FormatInvoiceNumber formats a document number from a template, a type
// prefix, the issue time and a 1-based sequence. It has no side effects.
func FormatInvoiceNumber(
	template string,
	prefix string,
	issuedAt time.Time,
	seq int64,
) (string, error) {

	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}

	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	out := replaceDateTokens(template, prefix, issuedAt)

	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}

		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}

		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}

	return out, nil
}

// ParseSequence extracts the sequence from a stored number of the bucket.
// Anything other than digits after the bucket prefix is reported as
// domain.ErrMalformedInvoiceNumber.
func ParseSequence(number, bucketPrefix string) (int64, error) {
	if !strings.HasPrefix(number, bucketPrefix) {
		return 0, fmt.Errorf("%w: %q does not start with %q", domain.ErrMalformedInvoiceNumber, number, bucketPrefix)
	}
	tail := number[len(bucketPrefix):]
	if tail == "" || strings.TrimLeft(tail, "0123456789") != "" {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedInvoiceNumber, number)
	}
	seq, err := strconv.ParseInt(tail, 10, 64)
	if err != nil || seq <= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedInvoiceNumber, number)
	}
	return seq, nil
}

// NextSequence returns 1 for an empty bucket and last+1 otherwise.
func NextSequence(last *string, bucketPrefix string) (int64, error) {
	if last == nil {
		return 1, nil
	}
	seq, err := ParseSequence(*last, bucketPrefix)
	if err != nil {
		return 0, err
	}
	return seq + 1, nil
}

func replaceDateTokens(s, prefix string, t time.Time) string {
	s = strings.ReplaceAll(s, "{PREFIX}", prefix)
	s = strings.ReplaceAll(s, "{YYYY}", t.Format("2006"))
	s = strings.ReplaceAll(s, "{YY}", t.Format("06"))
	s = strings.ReplaceAll(s, "{MM}", t.Format("01"))
	s = strings.ReplaceAll(s, "{DD}", t.Format("02"))
	return s
}
