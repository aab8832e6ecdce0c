package domain

import "errors"

var (
	ErrInvalidOrganization     = errors.New("invalid_organization")
	ErrInvalidDocumentID       = errors.New("invalid_document_id")
	ErrInvalidDocumentType     = errors.New("invalid_document_type")
	ErrInvalidCustomer         = errors.New("invalid_customer")
	ErrInvalidLocation         = errors.New("invalid_location")
	ErrInvalidLineItems        = errors.New("invalid_line_items")
	ErrDocumentNotFound        = errors.New("document_not_found")
	ErrDocumentNotEditable     = errors.New("document_not_editable")
	ErrInvalidStatusTransition = errors.New("invalid_status_transition")

	// ErrInvalidConversion is returned when a non-estimate is converted.
	ErrInvalidConversion = errors.New("invalid_conversion")
	// ErrMalformedInvoiceNumber means the last stored number of a bucket
	// cannot be parsed, so no next number can be derived.
	ErrMalformedInvoiceNumber = errors.New("malformed_invoice_number")
	// ErrDuplicateInvoiceNumber is returned once the number retry budget
	// is spent on unique-index collisions.
	ErrDuplicateInvoiceNumber = errors.New("duplicate_invoice_number")
)
