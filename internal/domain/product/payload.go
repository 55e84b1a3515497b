package product

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/geocoder89/catalogadmin/internal/validation"
)

// Payload is the allow-listed product body. Values stay raw until Parse so a
// type mismatch on one field is reported against that field instead of
// failing the whole request.
type Payload struct {
	Name       json.RawMessage `json:"name"`
	Slug       json.RawMessage `json:"slug"`
	Price      json.RawMessage `json:"price"`
	Stock      json.RawMessage `json:"stock"`
	Status     json.RawMessage `json:"status"`
	CategoryID json.RawMessage `json:"category_id"`
}

// Parse applies the per-field rules that need no storage lookup. On create,
// name, price and stock are required. Uniqueness and category existence are
// checked by the caller.
func (p Payload) Parse(create bool) (Changes, validation.Errors) {
	var ch Changes
	errs := validation.Errors{}

	if name, ok := stringField(errs, "name", p.Name, create); ok {
		if errs.Check("name", name, "required,max="+strconv.Itoa(NameMaxLength)) {
			ch.Name = &name
		}
	}

	// an empty slug on create means "derive it from the name"
	if present(p.Slug) {
		if s, ok := stringField(errs, "slug", p.Slug, false); ok {
			switch {
			case s == "" && create:
			case errs.Check("slug", s, "required,max=255"):
				ch.Slug = &s
			}
		}
	}

	if raw, ok := scalarField(errs, "price", p.Price, create); ok {
		price, err := ParsePrice(raw)
		if err != nil {
			errs.Add("price", "must be a non-negative decimal with at most 10 whole digits and 2 places")
		} else {
			ch.Price = &price
		}
	}

	if raw, ok := scalarField(errs, "stock", p.Stock, create); ok {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			errs.Add("stock", "must be an integer")
		} else if errs.Check("stock", stock, "gte=0,lte="+strconv.Itoa(MaxStock)) {
			ch.Stock = &stock
		}
	}

	if present(p.Status) {
		if s, ok := stringField(errs, "status", p.Status, false); ok {
			if errs.Check("status", s, "oneof=available out_of_stock coming_soon") {
				st := Status(s)
				ch.Status = &st
			}
		}
	}

	if p.CategoryID != nil {
		ch.CategorySet = true
		if !isNull(p.CategoryID) {
			raw, ok := scalarField(errs, "category_id", p.CategoryID, false)
			id, err := strconv.ParseInt(raw, 10, 64)
			switch {
			case !ok:
				ch.CategorySet = false
			case err != nil || id <= 0:
				errs.Add("category_id", "must be a positive integer")
				ch.CategorySet = false
			default:
				ch.CategoryID = &id
			}
		}
	}

	return ch, errs
}

func present(raw json.RawMessage) bool {
	return raw != nil && !isNull(raw)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// stringField decodes a JSON string. A missing value is an error only when required.
func stringField(errs validation.Errors, field string, raw json.RawMessage, required bool) (string, bool) {
	if !present(raw) {
		if required {
			errs.Add(field, "is required")
		}
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		errs.Add(field, "must be a string")
		return "", false
	}
	return strings.TrimSpace(s), true
}

// scalarField returns the text of a JSON number or string.
func scalarField(errs validation.Errors, field string, raw json.RawMessage, required bool) (string, bool) {
	if !present(raw) {
		if required {
			errs.Add(field, "is required")
		}
		return "", false
	}

	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			errs.Add(field, "is invalid")
			return "", false
		}
		if strings.TrimSpace(s) == "" {
			if required {
				errs.Add(field, "is required")
			}
			return "", false
		}
		return strings.TrimSpace(s), true
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		errs.Add(field, "must be a number")
		return "", false
	}
	return n.String(), true
}
