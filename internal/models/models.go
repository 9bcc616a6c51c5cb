// package models defines the data model for the customer-management client
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// AddressKind tags which [Address] variant is populated.
type AddressKind int

const (
	AddressNone AddressKind = iota
	AddressFlat
	AddressStructured
)

// AddressFields is the structured address record.
type AddressFields struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Address holds either a flat string or [AddressFields].
type Address struct {
	kind   AddressKind
	flat   string
	fields AddressFields
}

// FlatAddress builds the flat-string variant.
func FlatAddress(s string) Address {
	if s == "" {
		return Address{}
	}
	return Address{kind: AddressFlat, flat: s}
}

// StructuredAddress builds the structured variant.
func StructuredAddress(f AddressFields) Address {
	return Address{kind: AddressStructured, fields: f}
}

func (a Address) Kind() AddressKind     { return a.kind }
func (a Address) Flat() string          { return a.flat }
func (a Address) Fields() AddressFields { return a.fields }
func (a Address) IsZero() bool          { return a.kind == AddressNone }

// String renders the address on one line. Structured parts that are empty are skipped and the rest are joined with ", ".
func (a Address) String() string {
	switch a.kind {
	case AddressFlat:
		return a.flat
	case AddressStructured:
		parts := make([]string, 0, 5)
		for _, p := range []string{a.fields.Street, a.fields.City, a.fields.State, a.fields.PostalCode, a.fields.Country} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// UnmarshalJSON accepts a string, an object or null.
func (a *Address) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = Address{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = FlatAddress(s)
		return nil
	case data[0] == '{':
		var f AddressFields
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*a = StructuredAddress(f)
		return nil
	default:
		// Numbers, bools and arrays are not addresses; render them as absent.
		*a = Address{}
		return nil
	}
}

// MarshalJSON writes the variant back in the shape it was received.
func (a Address) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AddressFlat:
		return json.Marshal(a.flat)
	case AddressStructured:
		return json.Marshal(a.fields)
	default:
		return []byte("null"), nil
	}
}

// Customer is a customer record as returned by the backend.
type Customer struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Address   Address    `json:"address"`
	Notes     string     `json:"notes"`
	IsActive  bool       `json:"isActive"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts either "_id" or "id" as the identifier.
func (c *Customer) UnmarshalJSON(data []byte) error {
	type alias Customer
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = aux.AltID
	}
	return nil
}

// ActiveLabel renders the active flag as Yes/No.
func (c Customer) ActiveLabel() string {
	if c.IsActive {
		return "Yes"
	}
	return "No"
}

// NewCustomer is the create-customer request body.
type NewCustomer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address,omitempty"`
	Notes    string `json:"notes,omitempty"`
	IsActive bool   `json:"isActive"`
}

// Missing lists the required fields that are blank.
func (n NewCustomer) Missing() []string {
	var missing []string
	if strings.TrimSpace(n.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(n.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(n.Phone) == "" {
		missing = append(missing, "phone")
	}
	return missing
}

// CustomerPage is one page of the customer listing.
type CustomerPage struct {
	Customers  []Customer `json:"customers"`
	TotalPages int        `json:"totalPages"`
}

// UnmarshalJSON tolerates malformed listing payloads.
//
// A customers field that is not an array yields an empty list; a missing, zero or non-numeric totalPages yields 1.
func (p *CustomerPage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Customers  json.RawMessage `json:"customers"`
		TotalPages json.RawMessage `json:"totalPages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Customers = []Customer{}
	if trimmed := bytes.TrimSpace(raw.Customers); len(trimmed) > 0 && trimmed[0] == '[' {
		var customers []Customer
		if err := json.Unmarshal(trimmed, &customers); err != nil {
			return fmt.Errorf("failed to decode customers: %w", err)
		}
		p.Customers = customers
	}

	p.TotalPages = 1
	var total float64
	if err := json.Unmarshal(raw.TotalPages, &total); err == nil && total >= 1 {
		p.TotalPages = int(min(total, math.MaxInt32))
	} else {
		var s string
		if err := json.Unmarshal(raw.TotalPages, &s); err == nil {
			if n, err := strconv.Atoi(s); err == nil && n >= 1 {
				p.TotalPages = min(n, math.MaxInt32)
			}
		}
	}

	return nil
}

// ListQuery carries the pagination and date filter shared by the listing and CSV download endpoints.
//
// Zero Page, Limit, Start or End are omitted from the query string.
type ListQuery struct {
	Page  int
	Limit int
	Start time.Time
	End   time.Time
}

// Encode renders the query string in the order the backend documents it: startDate, endDate, page, limit.
//
// [url.Values.Encode] sorts keys, so the pairs are joined by hand.
func (q ListQuery) Encode() string {
	var pairs []string
	add := func(k, v string) {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(v))
	}

	if !q.Start.IsZero() {
		add("startDate", q.Start.Format(dateLayout))
	}
	if !q.End.IsZero() {
		add("endDate", q.End.Format(dateLayout))
	}
	if q.Page > 0 {
		add("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		add("limit", strconv.Itoa(q.Limit))
	}
	return strings.Join(pairs, "&")
}

// Credentials is the body for POST /signup (Username set) and POST /login.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the body returned by POST /login.
type TokenResponse struct {
	Token string `json:"token"`
}
