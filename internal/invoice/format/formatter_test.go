package format

import (
	"testing"
	"time"

	"github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var october = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func TestNumber(t *testing.T) {
	got, err := Number(domain.DocumentTypeInvoice, october, 7)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-10-0007", got)

	got, err = Number(domain.DocumentTypeEstimate, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), 1)
	require.NoError(t, err)
	assert.Equal(t, "EST-2026-01-0001", got)

	got, err = Number(domain.DocumentTypeInvoice, october, 10000)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-10-10000", got)

	_, err = Number(domain.DocumentTypeInvoice, october, 0)
	assert.Error(t, err)

	_, err = Number(domain.DocumentType("receipt"), october, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidDocumentType)
}

func TestBucketPrefix(t *testing.T) {
	got, err := BucketPrefix(domain.DocumentTypeInvoice, october)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-10-", got)

	got, err = BucketPrefix(domain.DocumentTypeEstimate, october)
	require.NoError(t, err)
	assert.Equal(t, "EST-2026-10-", got)

	_, err = TemplateBucketPrefix("{SEQ4}-{YYYY}", "INV", october)
	assert.Error(t, err)
}

func TestFormatInvoiceNumberTemplates(t *testing.T) {
	cases := []struct {
		template string
		want     string
	}{
		{template: "{PREFIX}{YY}{MM}{DD}-{SEQ}", want: "INV261015-42"},
		{template: "{PREFIX}/{YYYY}/{SEQ6}", want: "INV/2026/000042"},
	}
	for _, tc := range cases {
		got, err := FormatInvoiceNumber(tc.template, "INV", october, 42)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := FormatInvoiceNumber("", "INV", october, 1)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("{PREFIX}-{BOGUS}-{SEQ}", "INV", october, 1)
	assert.Error(t, err)
}

func TestNextSequence(t *testing.T) {
	seq, err := NextSequence(nil, "INV-2026-10-")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	last := "INV-2026-10-0041"
	seq, err = NextSequence(&last, "INV-2026-10-")
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)

	last = "INV-2026-10-9999"
	seq, err = NextSequence(&last, "INV-2026-10-")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), seq)
}

func TestParseSequenceRejectsMalformed(t *testing.T) {
	for _, number := range []string{
		"INV-2026-10-",
		"INV-2026-10-00a1",
		"INV-2026-10-0000",
		"INV-2026-10--001",
		"INV-2026-09-0001",
		"legacy-17",
	} {
		_, err := ParseSequence(number, "INV-2026-10-")
		assert.ErrorIs(t, err, domain.ErrMalformedInvoiceNumber, number)
	}
}
