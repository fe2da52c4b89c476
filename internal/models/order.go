package models

import "time"

type OrderSource string
type OrderStatus string
type PayoutStatus string

const (
	SourcePublic  OrderSource = "PUBLIC"
	SourcePartner OrderSource = "PARTNER"
)

const (
	OrderNew       OrderStatus = "NEW"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderCancelled OrderStatus = "CANCELLED"
)

const (
	PayoutPending PayoutStatus = "PENDING"
	PayoutPaid    PayoutStatus = "PAID"
)

// ParseOrderStatus returns the order status for its wire name.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderNew, OrderConfirmed, OrderShipped, OrderCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// ParsePayoutStatus returns the payout status for its wire name.
func ParsePayoutStatus(s string) (PayoutStatus, bool) {
	switch PayoutStatus(s) {
	case PayoutPending, PayoutPaid:
		return PayoutStatus(s), true
	}
	return "", false
}

// Order is a customer order. Public checkout orders carry no totals; partner
// orders carry totals derived from their items at creation time.
type Order struct {
	ID                  string        `db:"id" json:"id"`
	Source              OrderSource   `db:"source" json:"source"`
	PartnerID           *string       `db:"partner_id" json:"partnerId,omitempty"`
	ProductID           *string       `db:"product_id" json:"productId,omitempty"`
	Status              OrderStatus   `db:"status" json:"status"`
	Name                string        `db:"name" json:"name"`
	FatherName          string        `db:"father_name" json:"fatherName"`
	Address             string        `db:"address" json:"address"`
	Phone1              string        `db:"phone1" json:"phone1"`
	Phone2              *string       `db:"phone2" json:"phone2,omitempty"`
	TotalBaseAmount     *int64        `db:"total_base_amount" json:"totalBaseAmount,omitempty"`
	TotalPartnerAmount  *int64        `db:"total_partner_amount" json:"totalPartnerAmount,omitempty"`
	PartnerProfit       *int64        `db:"partner_profit" json:"partnerProfit,omitempty"`
	PartnerPayoutStatus *PayoutStatus `db:"partner_payout_status" json:"partnerPayoutStatus,omitempty"`
	PartnerPayoutPaidAt *time.Time    `db:"partner_payout_paid_at" json:"partnerPayoutPaidAt,omitempty"`
	CreatedAt           time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updatedAt"`

	Items []OrderItem `db:"-" json:"items,omitempty"`

	// Joined for admin listings.
	PartnerName *string `db:"partner_name" json:"partnerName,omitempty"`
	ProductName *string `db:"product_name" json:"productName,omitempty"`
}

// OrderItem is a priced line of a partner order. Name and both unit prices
// are snapshots taken when the order was placed.
type OrderItem struct {
	ID               string  `db:"id" json:"-"`
	OrderID          string  `db:"order_id" json:"-"`
	ProductID        *string `db:"product_id" json:"productId"`
	ProductName      string  `db:"product_name" json:"productName"`
	Quantity         int64   `db:"quantity" json:"quantity"`
	BaseUnitPrice    int64   `db:"base_unit_price" json:"baseUnitPrice"`
	PartnerUnitPrice int64   `db:"partner_unit_price" json:"partnerUnitPrice"`
}

// CreatedPartnerOrder is the response shape of a successful partner order.
type CreatedPartnerOrder struct {
	ID                  string       `json:"id"`
	CreatedAt           time.Time    `json:"createdAt"`
	Status              OrderStatus  `json:"status"`
	TotalBaseAmount     int64        `json:"totalBaseAmount"`
	TotalPartnerAmount  int64        `json:"totalPartnerAmount"`
	PartnerProfit       int64        `json:"partnerProfit"`
	PartnerPayoutStatus PayoutStatus `json:"partnerPayoutStatus"`
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Query  string
	Source OrderSource
	Status OrderStatus
	Limit  int
}

// TrackedOrder is what a public customer sees when tracking an order.
type TrackedOrder struct {
	ID          string      `db:"id" json:"id"`
	Status      OrderStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	ProductName *string     `db:"product_name" json:"productName,omitempty"`
	ProductSlug *string     `db:"product_slug" json:"productSlug,omitempty"`
}
