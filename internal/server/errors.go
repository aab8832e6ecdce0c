package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/invoicer/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	locationdomain "github.com/smallbiznis/invoicer/internal/location/domain"
	orgdomain "github.com/smallbiznis/invoicer/internal/organization/domain"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"github.com/smallbiznis/invoicer/pkg/db/pagination"
	"github.com/smallbiznis/invoicer/pkg/validator"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal            = errors.New("internal_error")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidRequest      = errors.New("invalid_request")
	ErrMissingOrganization = errors.New("missing_organization")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
			Errors:  vErr.Errors,
		}
	}

	if fields := validator.Fields(err); fields != nil {
		out := make([]ValidationError, 0, len(fields))
		for _, f := range fields {
			out = append(out, ValidationError{Field: f.Field, Code: f.Tag, Message: f.Message})
		}
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  out,
		}
	}

	switch {
	case isBadRequestError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: messageFor(err),
		}
	case isUnprocessableError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "validation_error",
			Message: messageFor(err),
			Errors: []ValidationError{
				{Code: codeOf(err), Message: messageFor(err)},
			},
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: messageFor(err),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the response type and a stable code for the
// request log line.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	return payload.Type, codeOf(err)
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isBadRequestError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrMissingOrganization),
		errors.Is(err, pagination.ErrInvalidPageToken),
		errors.Is(err, invoicedomain.ErrInvalidOrganization),
		errors.Is(err, invoicedomain.ErrInvalidDocumentID),
		errors.Is(err, customerdomain.ErrInvalidOrganization),
		errors.Is(err, customerdomain.ErrInvalidID),
		errors.Is(err, locationdomain.ErrInvalidOrganization),
		errors.Is(err, locationdomain.ErrInvalidID),
		errors.Is(err, orgdomain.ErrInvalidOrganization),
		errors.Is(err, taxdomain.ErrInvalidOrganization),
		errors.Is(err, taxdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isUnprocessableError(err error) bool {
	switch {
	case errors.Is(err, invoicedomain.ErrInvalidDocumentType),
		errors.Is(err, invoicedomain.ErrInvalidCustomer),
		errors.Is(err, invoicedomain.ErrInvalidLocation),
		errors.Is(err, invoicedomain.ErrInvalidLineItems),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidEmail),
		errors.Is(err, locationdomain.ErrInvalidCustomer),
		errors.Is(err, locationdomain.ErrInvalidName),
		errors.Is(err, orgdomain.ErrInvalidName),
		errors.Is(err, orgdomain.ErrInvalidTimezone),
		errors.Is(err, orgdomain.ErrInvalidCurrency),
		errors.Is(err, taxdomain.ErrInvalidName),
		errors.Is(err, taxdomain.ErrInvalidTaxCode),
		errors.Is(err, taxdomain.ErrInvalidTaxRate):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrDocumentNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, locationdomain.ErrNotFound),
		errors.Is(err, orgdomain.ErrNotFound),
		errors.Is(err, taxdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, invoicedomain.ErrDocumentNotEditable),
		errors.Is(err, invoicedomain.ErrInvalidStatusTransition),
		errors.Is(err, invoicedomain.ErrInvalidConversion),
		errors.Is(err, invoicedomain.ErrDuplicateInvoiceNumber),
		errors.Is(err, taxdomain.ErrDuplicateTaxCode):
		return true
	default:
		return false
	}
}

var errorMessages = map[error]string{
	ErrMissingOrganization:                   "the X-Org-ID header is required",
	pagination.ErrInvalidPageToken:           "invalid page token",
	invoicedomain.ErrInvalidDocumentID:       "invalid document id",
	invoicedomain.ErrInvalidDocumentType:     "type must be invoice or estimate",
	invoicedomain.ErrInvalidCustomer:         "customer does not exist in this organization",
	invoicedomain.ErrInvalidLocation:         "location does not belong to the customer",
	invoicedomain.ErrDocumentNotEditable:     "only draft documents can be edited",
	invoicedomain.ErrInvalidStatusTransition: "the document cannot move to that status",
	invoicedomain.ErrInvalidConversion:       "only estimates can be converted to invoices",
	invoicedomain.ErrDuplicateInvoiceNumber:  "could not allocate an invoice number, please retry",
	taxdomain.ErrDuplicateTaxCode:            "a tax definition with this code already exists",
	taxdomain.ErrInvalidTaxRate:              "tax rate must be a non-negative percentage",
	orgdomain.ErrInvalidTimezone:             "unknown timezone",
	orgdomain.ErrInvalidCurrency:             "unsupported currency",
	customerdomain.ErrInvalidEmail:           "invalid email address",
}

// messageFor prefers a wrapped detail such as "items[2].tax_rate must not
// be negative" over the generic sentence for the sentinel.
func messageFor(err error) string {
	for sentinel, msg := range errorMessages {
		if errors.Is(err, sentinel) {
			if err != sentinel && errors.Unwrap(err) == sentinel {
				return err.Error()
			}
			return msg
		}
	}
	return err.Error()
}

// codeOf returns the innermost sentinel text, e.g. invalid_line_items.
func codeOf(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
