package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smallbiznis/invoicer/pkg/validator"
)

// EmailList is an ordered set of customer email addresses. Addresses are
// trimmed and deduplicated case-insensitively; the first spelling wins.
type EmailList []string

// NewEmailList validates every address and fails on the first invalid one.
func NewEmailList(emails ...string) (EmailList, error) {
	out := make(EmailList, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, raw := range emails {
		email := strings.TrimSpace(raw)
		if email == "" {
			continue
		}
		if err := validator.Var("emails", email, "email"); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
		}
		key := strings.ToLower(email)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, email)
	}
	return out, nil
}

// Primary returns the first address, or "" for an empty list.
func (l EmailList) Primary() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// ToArray returns a copy of the addresses.
func (l EmailList) ToArray() []string {
	out := make([]string, len(l))
	copy(out, l)
	return out
}

// ToJSON encodes the list as a JSON array; an empty list is [].
func (l EmailList) ToJSON() (string, error) {
	b, err := json.Marshal(l.ToArray())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (l EmailList) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.ToArray())
}

func (l *EmailList) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: expected an array of strings", ErrInvalidEmail)
	}
	list, err := NewEmailList(raw...)
	if err != nil {
		return err
	}
	*l = list
	return nil
}

func (l EmailList) Value() (driver.Value, error) {
	return l.ToJSON()
}

// Scan decodes the stored JSON array. Stored values are trusted and not
// revalidated.
func (l *EmailList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = EmailList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan email list: unsupported type %T", src)
	}
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("scan email list: %w", err)
	}
	*l = EmailList(raw)
	return nil
}

func (EmailList) GormDataType() string {
	return "text"
}
