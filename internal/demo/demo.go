// Package demo holds the sample classes served by the dataextract binary.
package demo

import (
	_ "embed"
	"fmt"
	"strings"
	"time"
)

// Metadata declares the fields of the demo interface classes, in the YAML
// layout read by metadata.ParseYAML.
//
//go:embed metadata.yaml
var Metadata []byte

// Class identifiers.
const (
	ClassCustomer = "demo.Customer"
	ClassAddress  = "demo.Address"
	ClassOrder    = "demo.Order"
	ClassInvoice  = "demo.Invoice"
	ClassNamed    = "demo.Named"
)

// Registrar registers classes under stable identifiers.
type Registrar interface {
	Register(name string, sample any) error
}

// Named is implemented by every demo class with a display name. Its fields
// are declared in YAML since interfaces carry no tags.
type Named interface {
	DisplayName() string
}

// Customer is a buyer account.
type Customer struct {
	_ struct{} `dataextract:"fields=name,customer.name;getter=FullName"`
	_ struct{} `dataextract:"fields=customer.email;getter=GetEmail"`
	_ struct{} `dataextract:"fields=customer.since;getter=GetSince;type=datetime | fields=customer.since;getter=SinceDate"`
	_ struct{} `dataextract:"fields=customer.nickname;getter=GetNickname"`

	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Since     time.Time `json:"since"`
	Nickname  *string   `json:"nickname,omitempty"`
}

func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c *Customer) GetEmail() string { return c.Email }

func (c *Customer) GetSince() time.Time { return c.Since }

func (c *Customer) SinceDate() string { return c.Since.Format(time.DateOnly) }

func (c *Customer) GetNickname() *string { return c.Nickname }

// DisplayName implements Named.
func (c *Customer) DisplayName() string {
	if c.Nickname != nil && *c.Nickname != "" {
		return *c.Nickname
	}
	return c.FullName()
}

// Address is a postal address.
type Address struct {
	_ struct{} `dataextract:"fields=city,address.city;getter=GetCity"`
	_ struct{} `dataextract:"fields=address.zip;getter=GetZip"`
	_ struct{} `dataextract:"fields=address.country;getter=GetCountry"`

	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

func (a Address) GetCity() string { return a.City }

func (a Address) GetZip() string { return a.Zip }

// GetCountry returns nil for an unknown country so it can be skipped.
func (a Address) GetCountry() any {
	if a.Country == "" {
		return nil
	}
	return strings.ToUpper(a.Country)
}

// Order is a placed order. Notes feed text-based providers.
type Order struct {
	_ struct{} `dataextract:"fields=order.number;getter=GetNumber"`
	_ struct{} `dataextract:"fields=order.total,total;getter=GetTotal;type=float | fields=order.total;getter=TotalLabel"`
	_ struct{} `dataextract:"fields=order.items;getter=ItemCount;type=int"`
	_ struct{} `dataextract:"fields=order.placed_at;getter=GetPlacedAt;type=datetime"`

	Number   string    `json:"number"`
	Currency string    `json:"currency"`
	Total    float64   `json:"total"`
	Items    []string  `json:"items"`
	PlacedAt time.Time `json:"placed_at"`
	Notes    string    `json:"notes"`
}

func (o *Order) GetNumber() string { return o.Number }

func (o *Order) GetTotal() float64 { return o.Total }

func (o *Order) TotalLabel() string {
	return strings.TrimSpace(fmt.Sprintf("%.2f %s", o.Total, o.Currency))
}

func (o *Order) ItemCount() int { return len(o.Items) }

func (o *Order) GetPlacedAt() time.Time { return o.PlacedAt }

// DisplayName implements Named.
func (o *Order) DisplayName() string { return "Order " + o.Number }

// Text implements provider.Texter.
func (o *Order) Text() string { return o.Notes }

// Invoice bills an order. It is-a Order, so order fields apply to it too.
type Invoice struct {
	Order

	_ struct{} `dataextract:"fields=invoice.due_date;getter=GetDueDate;type=datetime"`
	_ struct{} `dataextract:"fields=invoice.paid;getter=PaidLabel"`

	DueDate time.Time  `json:"due_date"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
}

func (i *Invoice) GetDueDate() time.Time { return i.DueDate }

// PaidLabel returns an error for invoices paid before they were placed.
func (i *Invoice) PaidLabel() (string, error) {
	if i.PaidAt == nil {
		return "unpaid", nil
	}
	if i.PaidAt.Before(i.PlacedAt) {
		return "", fmt.Errorf("invoice %s paid before it was placed", i.Number)
	}
	return "paid", nil
}

// DisplayName implements Named.
func (i *Invoice) DisplayName() string { return "Invoice " + i.Number }

// Register adds the demo classes in catalog order.
func Register(r Registrar) error {
	classes := []struct {
		name   string
		sample any
	}{
		{ClassCustomer, Customer{}},
		{ClassAddress, Address{}},
		{ClassOrder, Order{}},
		{ClassInvoice, Invoice{}},
		{ClassNamed, (*Named)(nil)},
	}
	for _, c := range classes {
		if err := r.Register(c.name, c.sample); err != nil {
			return fmt.Errorf("register demo classes: %w", err)
		}
	}
	return nil
}
