package jobs

import "strings"

// ValidatePayload performs minimal validation on decoded payloads.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	switch t {
	case JobLowStockAlert:
		var p LowStockAlertPayload
		switch v := payload.(type) {
		case LowStockAlertPayload:
			p = v
		case *LowStockAlertPayload:
			p = *v
		default:
			return payloadErr(t, "", ErrPayloadTypeMismatch)
		}
		switch {
		case p.ProductID <= 0:
			return payloadErr(t, "productId", ErrInvalidJobPayload)
		case strings.TrimSpace(p.ProductName) == "":
			return payloadErr(t, "productName", ErrInvalidJobPayload)
		case len(p.Roles) == 0:
			return payloadErr(t, "roles", ErrInvalidJobPayload)
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
