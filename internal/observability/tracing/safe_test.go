package tracing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributes(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/documents/:id"),
		attribute.String("customer.email", "a@b.c"),
		attribute.String("note", strings.Repeat("x", 300)),
		attribute.Int("http.status_code", 200),
	)
	assert.Len(t, attrs, 3)
	assert.Len(t, attrs[1].Value.AsString(), maxAttributeLength)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.EqualError(t, SafeError(errors.New("boom\nstack")), "boom")
}
