package models

import "time"

// PartnerStatus enumerates the lifecycle states of a partner account.
type PartnerStatus string

const (
	PartnerPending   PartnerStatus = "PENDING"
	PartnerActive    PartnerStatus = "ACTIVE"
	PartnerSuspended PartnerStatus = "SUSPENDED"
)

// ParsePartnerStatus returns the status for its wire name.
func ParsePartnerStatus(s string) (PartnerStatus, bool) {
	switch PartnerStatus(s) {
	case PartnerPending, PartnerActive, PartnerSuspended:
		return PartnerStatus(s), true
	}
	return "", false
}

// Partner is a dropshipper account. Only ACTIVE partners may authenticate
// or place orders.
type Partner struct {
	ID           string        `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	Email        *string       `db:"email" json:"email"`
	Phone        *string       `db:"phone" json:"phone"`
	PasswordHash *string       `db:"password_hash" json:"-"`
	Status       PartnerStatus `db:"status" json:"status"`
	PayoutDetails
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the partner may authenticate and transact.
func (p *Partner) IsActive() bool {
	return p != nil && p.Status == PartnerActive
}

// PayoutDetails holds where a partner wants their profit sent.
type PayoutDetails struct {
	PayoutMethod        *string `db:"payout_method" json:"payoutMethod"`
	PayoutAccountName   *string `db:"payout_account_name" json:"payoutAccountName"`
	PayoutAccountNumber *string `db:"payout_account_number" json:"payoutAccountNumber"`
	PayoutBankName      *string `db:"payout_bank_name" json:"payoutBankName"`
	PayoutIBAN          *string `db:"payout_iban" json:"payoutIban"`
	PayoutPhone         *string `db:"payout_phone" json:"payoutPhone"`
	PayoutNotes         *string `db:"payout_notes" json:"payoutNotes"`
}

// PartnerSummary is the public-facing view returned to an authenticated partner.
type PartnerSummary struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Status PartnerStatus `json:"status"`
	Email  *string       `json:"email,omitempty"`
	Phone  *string       `json:"phone,omitempty"`
}

// Summary strips credentials and payout data.
func (p *Partner) Summary() PartnerSummary {
	return PartnerSummary{ID: p.ID, Name: p.Name, Status: p.Status, Email: p.Email, Phone: p.Phone}
}

// PartnerAnalytics aggregates profit over a partner's orders.
type PartnerAnalytics struct {
	OrdersCount   int   `db:"orders_count" json:"ordersCount"`
	TotalProfit   int64 `db:"total_profit" json:"totalProfit"`
	PendingProfit int64 `db:"pending_profit" json:"pendingProfit"`
	PaidProfit    int64 `db:"paid_profit" json:"paidProfit"`
}
