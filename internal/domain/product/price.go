package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidPrice = errors.New("price must be a non-negative decimal with at most 10 whole digits and 2 places")

// MaxPriceWholeDigits matches the NUMERIC(12,2) column.
const MaxPriceWholeDigits = 10

var priceRe = regexp.MustCompile(fmt.Sprintf(`^\d{1,%d}(\.\d{1,2})?$`, MaxPriceWholeDigits))

// Price is a fixed-point amount held in cents.
type Price int64

func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if !priceRe.MatchString(s) {
		return 0, ErrInvalidPrice
	}

	whole, frac, _ := strings.Cut(s, ".")
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}

	return Price(w*100 + f), nil
}

func (p Price) Cents() int64 { return int64(p) }

func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", int64(p)/100, int64(p)%100)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ErrInvalidPrice
		}
		b = []byte(s)
	}

	parsed, err := ParsePrice(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
