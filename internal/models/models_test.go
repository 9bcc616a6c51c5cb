package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestAddress(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		tc := []struct {
			name string
			addr Address
			want string
		}{
			{
				name: "structured with empty postal code",
				addr: StructuredAddress(AddressFields{Street: "1 Rd", City: "X", State: "Y", PostalCode: "", Country: "Z"}),
				want: "1 Rd, X, Y, Z",
			},
			{
				name: "structured with every part",
				addr: StructuredAddress(AddressFields{Street: "9 Elm St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US"}),
				want: "9 Elm St, Springfield, IL, 62701, US",
			},
			{
				name: "structured with nothing",
				addr: StructuredAddress(AddressFields{}),
				want: "",
			},
			{
				name: "flat",
				addr: FlatAddress("221B Baker Street, London"),
				want: "221B Baker Street, London",
			},
			{
				name: "absent",
				addr: Address{},
				want: "",
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.addr.String(); got != tt.want {
					t.Errorf("String() = %q, want %q", got, tt.want)
				}
			})
		}
	})

	t.Run("UnmarshalJSON", func(t *testing.T) {
		tc := []struct {
			name     string
			input    string
			wantKind AddressKind
			want     string
		}{
			{name: "string", input: `"12 Main St"`, wantKind: AddressFlat, want: "12 Main St"},
			{name: "empty string", input: `""`, wantKind: AddressNone, want: ""},
			{name: "object", input: `{"street":"1 Rd","city":"X","state":"Y","postalCode":"","country":"Z"}`, wantKind: AddressStructured, want: "1 Rd, X, Y, Z"},
			{name: "null", input: `null`, wantKind: AddressNone, want: ""},
			{name: "number", input: `42`, wantKind: AddressNone, want: ""},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				var a Address
				if err := json.Unmarshal([]byte(tt.input), &a); err != nil {
					t.Fatalf("Unmarshal() error = %v", err)
				}
				if a.Kind() != tt.wantKind {
					t.Errorf("Kind() = %v, want %v", a.Kind(), tt.wantKind)
				}
				if a.String() != tt.want {
					t.Errorf("String() = %q, want %q", a.String(), tt.want)
				}
			})
		}
	})

	t.Run("MarshalJSON keeps the variant shape", func(t *testing.T) {
		flat, _ := json.Marshal(FlatAddress("x"))
		if string(flat) != `"x"` {
			t.Errorf("flat marshal = %s", flat)
		}

		structured, _ := json.Marshal(StructuredAddress(AddressFields{City: "X"}))
		if string(structured) != `{"city":"X"}` {
			t.Errorf("structured marshal = %s", structured)
		}

		none, _ := json.Marshal(Address{})
		if string(none) != `null` {
			t.Errorf("absent marshal = %s", none)
		}
	})
}

func TestCustomer(t *testing.T) {
	t.Run("Decodes _id", func(t *testing.T) {
		var c Customer
		data := `{"_id":"abc","name":"Ada","email":"ada@example.com","phone":"555","address":{"city":"London"},"notes":"vip","isActive":true}`
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}

		if c.ID != "abc" {
			t.Errorf("expected id abc, got %q", c.ID)
		}
		if c.Address.String() != "London" {
			t.Errorf("expected address London, got %q", c.Address.String())
		}
		if c.ActiveLabel() != "Yes" {
			t.Errorf("expected active label Yes, got %s", c.ActiveLabel())
		}
	})

	t.Run("Falls back to id", func(t *testing.T) {
		var c Customer
		if err := json.Unmarshal([]byte(`{"id":"42","name":"Bob","isActive":false}`), &c); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if c.ID != "42" {
			t.Errorf("expected id 42, got %q", c.ID)
		}
		if c.ActiveLabel() != "No" {
			t.Errorf("expected active label No, got %s", c.ActiveLabel())
		}
	})
}

func TestNewCustomer(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		got := NewCustomer{Name: "Ada", Phone: "  "}.Missing()
		if len(got) != 2 || got[0] != "email" || got[1] != "phone" {
			t.Errorf("Missing() = %v, want [email phone]", got)
		}

		if got := (NewCustomer{Name: "a", Email: "b", Phone: "c"}).Missing(); len(got) != 0 {
			t.Errorf("expected nothing missing, got %v", got)
		}
	})

	t.Run("Optional fields are omitted", func(t *testing.T) {
		data, err := json.Marshal(NewCustomer{Name: "a", Email: "b", Phone: "c", IsActive: true})
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if string(data) != `{"name":"a","email":"b","phone":"c","isActive":true}` {
			t.Errorf("unexpected payload %s", data)
		}
	})
}

func TestCustomerPage(t *testing.T) {
	tc := []struct {
		name      string
		input     string
		wantCount int
		wantPages int
	}{
		{name: "regular page", input: `{"customers":[{"_id":"1"},{"_id":"2"}],"totalPages":3}`, wantCount: 2, wantPages: 3},
		{name: "customers not a list", input: `{"customers":{"_id":"1"},"totalPages":2}`, wantCount: 0, wantPages: 2},
		{name: "customers missing", input: `{"totalPages":4}`, wantCount: 0, wantPages: 4},
		{name: "total pages missing", input: `{"customers":[]}`, wantCount: 0, wantPages: 1},
		{name: "total pages zero", input: `{"customers":[],"totalPages":0}`, wantCount: 0, wantPages: 1},
		{name: "total pages null", input: `{"customers":null,"totalPages":null}`, wantCount: 0, wantPages: 1},
		{name: "total pages as string", input: `{"customers":[],"totalPages":"5"}`, wantCount: 0, wantPages: 5},
		{name: "total pages huge float", input: `{"customers":[],"totalPages":1e300}`, wantCount: 0, wantPages: math.MaxInt32},
		{name: "total pages huge string", input: `{"customers":[],"totalPages":"9000000000000"}`, wantCount: 0, wantPages: math.MaxInt32},
		{name: "total pages fractional", input: `{"customers":[],"totalPages":2.5}`, wantCount: 0, wantPages: 2},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			var page CustomerPage
			if err := json.Unmarshal([]byte(tt.input), &page); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if page.Customers == nil {
				t.Error("expected customers to be a non-nil slice")
			}
			if len(page.Customers) != tt.wantCount {
				t.Errorf("expected %d customers, got %d", tt.wantCount, len(page.Customers))
			}
			if page.TotalPages != tt.wantPages {
				t.Errorf("expected %d total pages, got %d", tt.wantPages, page.TotalPages)
			}
		})
	}
}

func TestListQuery(t *testing.T) {
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local)

	tc := []struct {
		name  string
		query ListQuery
		want  string
	}{
		{
			name:  "all parameters",
			query: ListQuery{Page: 2, Limit: 10, Start: start, End: end},
			want:  "startDate=2024-01-05&endDate=2024-01-10&page=2&limit=10",
		},
		{
			name:  "no dates",
			query: ListQuery{Page: 1, Limit: 10},
			want:  "page=1&limit=10",
		},
		{
			name:  "start only",
			query: ListQuery{Page: 1, Limit: 10, Start: start},
			want:  "startDate=2024-01-05&page=1&limit=10",
		},
		{
			name:  "empty",
			query: ListQuery{},
			want:  "",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}
