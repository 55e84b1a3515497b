package product

import (
	"encoding/json"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    Price
		wantErr bool
	}{
		{in: "99.99", want: 9999},
		{in: "149.9", want: 14990},
		{in: "10", want: 1000},
		{in: "0.05", want: 5},
		{in: "not-a-decimal", wantErr: true},
		{in: "1.999", wantErr: true},
		{in: "-5.00", wantErr: true},
		{in: "", wantErr: true},
		{in: "9999999999.99", want: 999999999999},
		{in: "10000000000", wantErr: true},
		{in: "900000000000000000", wantErr: true},
		{in: "92233720368547759", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePrice(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParsePrice(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestPriceJSON(t *testing.T) {
	b, err := json.Marshal(Price(14999))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "149.99" {
		t.Fatalf("marshal = %s, want 149.99", b)
	}

	var p Price
	if err := json.Unmarshal([]byte(`"12.50"`), &p); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if p != 1250 {
		t.Fatalf("unmarshal = %d, want 1250", p)
	}
}

func TestSlugify(t *testing.T) {
	if got := Slugify("Test Product Name"); got != "test-product-name" {
		t.Fatalf("Slugify = %q", got)
	}
	if got := Slugify("  Mixed   CASE  Widget "); got != "mixed-case-widget" {
		t.Fatalf("Slugify = %q", got)
	}
}

func TestPayloadParseCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{name: "valid", body: `{"name":"Desk","price":99.99,"stock":0,"status":"available","category_id":3}`},
		{name: "empty", body: `{}`, wantFields: []string{"name", "price", "stock"}},
		{name: "negative_stock", body: `{"name":"Desk","price":1,"stock":-10}`, wantFields: []string{"stock"}},
		{name: "fractional_stock", body: `{"name":"Desk","price":1,"stock":1.5}`, wantFields: []string{"stock"}},
		{name: "bad_price", body: `{"name":"Desk","price":"not-a-decimal","stock":1}`, wantFields: []string{"price"}},
		{name: "bad_status", body: `{"name":"Desk","price":1,"stock":1,"status":"invalid_status"}`, wantFields: []string{"status"}},
		{name: "long_name", body: `{"name":"` + string(make65()) + `","price":1,"stock":1}`, wantFields: []string{"name"}},
		{name: "name_not_string", body: `{"name":12,"price":1,"stock":1}`, wantFields: []string{"name"}},
		{name: "price_too_large", body: `{"name":"Desk","price":"100000000000.00","stock":1}`, wantFields: []string{"price"}},
		{name: "price_overflows_int64", body: `{"name":"Desk","price":900000000000000000,"stock":1}`, wantFields: []string{"price"}},
		{name: "max_stock", body: `{"name":"Desk","price":1,"stock":2147483647}`},
		{name: "stock_too_large", body: `{"name":"Desk","price":1,"stock":3000000000}`, wantFields: []string{"stock"}},
		{name: "bad_category", body: `{"name":"Desk","price":1,"stock":1,"category_id":"abc"}`, wantFields: []string{"category_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Payload
			if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			_, errs := p.Parse(true)

			if len(errs) != len(tt.wantFields) {
				t.Fatalf("got errors %v, want fields %v", errs, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if !errs.Has(f) {
					t.Fatalf("expected error on %s, got %v", f, errs)
				}
			}
		})
	}
}

func TestPayloadParseUpdateIsPartial(t *testing.T) {
	var p Payload
	if err := json.Unmarshal([]byte(`{"price":"149.99","category_id":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	ch, errs := p.Parse(false)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if ch.Name != nil || ch.Stock != nil || ch.Slug != nil {
		t.Fatalf("unsupplied fields should stay nil: %+v", ch)
	}
	if ch.Price == nil || *ch.Price != 14999 {
		t.Fatalf("price = %v", ch.Price)
	}
	if !ch.CategorySet || ch.CategoryID != nil {
		t.Fatalf("explicit null should clear category: %+v", ch)
	}

	before := Product{Name: "Old", Stock: 4, Price: 100, CategoryID: ptr(int64(2))}
	after := ch.Apply(before)
	if after.Name != "Old" || after.Stock != 4 || after.Price != 14999 || after.CategoryID != nil {
		t.Fatalf("apply = %+v", after)
	}
}

func make65() []byte {
	b := make([]byte, NameMaxLength+1)
	for i := range b {
		b[i] = 'a'
	}
	return b
}

func ptr[T any](v T) *T { return &v }
