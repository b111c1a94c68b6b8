// Package validation evaluates the per-field rules of the product edit
// form. Rules never fail hard: each check yields a human-readable message
// or an empty string, and the presentation layer renders them inline.
package validation

import (
	"regexp"
	"strconv"
	"strings"
)

// Field names understood by the engine. Any other field is always valid.
const (
	FieldCategory = "category"
	FieldPrice    = "price"
	FieldQuantity = "quantity"
)

// Messages shown next to the edit form fields.
const (
	MsgCategoryRequired = "Category is required"
	MsgPriceRequired    = "Price is required"
	MsgPriceInvalid     = "Invalid price format"
	MsgQuantityRequired = "Quantity is required"
	MsgQuantityInvalid  = "Invalid quantity format"
	MsgQuantityNegative = "Quantity cannot be negative"
)

// An integer or a decimal with up to two places, optionally "$"-prefixed.
var pricePattern = regexp.MustCompile(`^\$?\d+(\.\d{1,2})?$`)

// ValidateField evaluates one edit-form field and returns an error message,
// or an empty string when the value is acceptable.
func ValidateField(field, value string) string {
	trimmed := strings.TrimSpace(value)
	switch field {
	case FieldCategory:
		if trimmed == "" {
			return MsgCategoryRequired
		}
	case FieldPrice:
		if trimmed == "" {
			return MsgPriceRequired
		}
		if !pricePattern.MatchString(trimmed) {
			return MsgPriceInvalid
		}
	case FieldQuantity:
		if trimmed == "" {
			return MsgQuantityRequired
		}
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return MsgQuantityInvalid
		}
		if n < 0 {
			return MsgQuantityNegative
		}
	}
	return ""
}

// Submittable reports whether an edit form with the given field values may
// be saved: category, price and quantity must be present and every field
// must pass its rule.
func Submittable(fields map[string]string) bool {
	for _, required := range []string{FieldCategory, FieldPrice, FieldQuantity} {
		if strings.TrimSpace(fields[required]) == "" {
			return false
		}
	}
	for field, value := range fields {
		if ValidateField(field, value) != "" {
			return false
		}
	}
	return true
}
