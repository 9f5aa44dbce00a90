package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// cost serializes as a JSON number, not a quoted string
	decimal.MarshalJSONWithoutQuotes = true
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateItemRequest uses pointers for the numeric fields so that "absent" is
// distinguishable from an explicit zero. Required-field checks run in the
// service, in a fixed order, so the error names the first missing field.
type CreateItemRequest struct {
	Name         string           `json:"name"`
	SKU          string           `json:"sku"`
	Category     string           `json:"category"`
	Cost         *decimal.Decimal `json:"cost"         validate:"omitempty,min=0"`
	OnHand       *int             `json:"onHand"       validate:"omitempty,min=0"`
	Reserved     *int             `json:"reserved"     validate:"omitempty,min=0"`
	ReorderPoint *int             `json:"reorderPoint" validate:"omitempty,min=0"`
	Image        string           `json:"image"`
}

// PatchItemRequest is a sparse patch: only non-nil fields are applied.
// These four are the whole allow-list — anything else in the body is ignored.
type PatchItemRequest struct {
	OnHand       *int             `json:"onHand"       validate:"omitempty,min=0"`
	Reserved     *int             `json:"reserved"     validate:"omitempty,min=0"`
	Cost         *decimal.Decimal `json:"cost"         validate:"omitempty,min=0"`
	ReorderPoint *int             `json:"reorderPoint" validate:"omitempty,min=0"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ItemFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Category     string          `json:"category"`
	Cost         decimal.Decimal `json:"cost"`
	OnHand       int             `json:"onHand"`
	Reserved     int             `json:"reserved"`
	ReorderPoint int             `json:"reorderPoint"`
	Image        string          `json:"image"`
	// Set on list responses only
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type ItemListResponse struct {
	Items      []ItemResponse  `json:"items"`
	Categories []CategoryCount `json:"categories"`
}

// ItemEnvelope wraps single-item responses from create and patch.
type ItemEnvelope struct {
	Item ItemResponse `json:"item"`
}
