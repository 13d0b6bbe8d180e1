package models

import (
	"github.com/uptrace/bun"
)

type DrinkType string

const (
	DrinkAlcoholic    DrinkType = "alcoholic"
	DrinkNonAlcoholic DrinkType = "non-alcoholic"
)

func (t DrinkType) Valid() bool {
	return t == DrinkAlcoholic || t == DrinkNonAlcoholic
}

type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Price     int64     `bun:"price,notnull" json:"price"`
	Type      DrinkType `bun:"type,notnull" json:"type"`
	Archived  bool      `bun:"archived,notnull" json:"archived"`
	CreatedAt int64     `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt int64     `bun:"updated_at,notnull" json:"updatedAt"`
}

type MenuItemRequest struct {
	Name  string    `json:"name"`
	Price *int64    `json:"price"`
	Type  DrinkType `json:"type"`
}

// MenuItemPatch carries the fields of an update; nil fields are left untouched.
type MenuItemPatch struct {
	Name     *string    `json:"name,omitempty"`
	Price    *int64     `json:"price,omitempty"`
	Type     *DrinkType `json:"type,omitempty"`
	Archived *bool      `json:"archived,omitempty"`
}

// Catalog is a read-only snapshot of the menu keyed by item id.
type Catalog map[string]MenuItem

// MenuImportRequest adds one item per non-blank line of Names.
type MenuImportRequest struct {
	Names string    `json:"names"`
	Price *int64    `json:"price"`
	Type  DrinkType `json:"type"`
}
