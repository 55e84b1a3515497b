package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/geocoder89/catalogadmin/internal/domain/job"
)

func EncodePayload(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	switch t {
	case JobLowStockAlert:
		switch payload.(type) {
		case LowStockAlertPayload, *LowStockAlertPayload:
		default:
			return nil, payloadErr(t, "", ErrPayloadTypeMismatch)
		}
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", payloadErr(t, "", ErrInvalidJobPayload), err)
	}

	return b, nil
}

// DecodePayload unmarshals job.Payload into the correct typed payload struct.
func DecodePayload(j job.Job) (any, error) {
	t := JobType(j.Type)

	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, payloadErr(t, "", ErrInvalidJobPayload)
	}

	switch t {
	case JobLowStockAlert:
		var p LowStockAlertPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", payloadErr(t, "", ErrInvalidJobPayload), err)
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}
