package models

import "time"

// APIKey is a bearer credential owned by a partner. The plaintext is never
// stored: KeyHash serves authentication lookups and EncryptedKey, when
// present, allows an authorized reveal.
type APIKey struct {
	ID           string     `db:"id" json:"id"`
	PartnerID    string     `db:"partner_id" json:"partnerId"`
	Prefix       string     `db:"prefix" json:"prefix"`
	KeyHash      string     `db:"key_hash" json:"-"`
	EncryptedKey *string    `db:"encrypted_key" json:"-"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	LastUsedAt   *time.Time `db:"last_used_at" json:"lastUsedAt"`
}

// APIKeyView is the listing shape shown on dashboards.
type APIKeyView struct {
	ID         string     `json:"id"`
	Prefix     string     `json:"prefix"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
	CanReveal  bool       `json:"canReveal"`
}

// View converts the key to its listing shape.
func (k *APIKey) View() APIKeyView {
	return APIKeyView{
		ID:         k.ID,
		Prefix:     k.Prefix,
		IsActive:   k.IsActive,
		CreatedAt:  k.CreatedAt,
		LastUsedAt: k.LastUsedAt,
		CanReveal:  k.EncryptedKey != nil && *k.EncryptedKey != "",
	}
}
