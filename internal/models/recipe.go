package models

import "time"

// SnapSuffix is appended to the name of every snapped copy.
const SnapSuffix = "(snap)"

// Recipe represents a recipe owned by exactly one user.
// Names are not unique: snapping a recipe clones its name with SnapSuffix.
type Recipe struct {
	ID        uint      `json:"id" gorm:"column:recipe_id;primaryKey"`
	Name      string    `json:"name" gorm:"column:recipe_name;type:varchar(250);not null" validate:"required,max=250"`
	OwnerID   uint      `json:"owner_id" gorm:"column:owner;not null;index"`
	Owner     *User     `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapName returns the name a snapped copy of r receives.
func (r *Recipe) SnapName() string {
	return r.Name + SnapSuffix
}

// RecipeView is a recipe joined with its owner's display name.
type RecipeView struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	OwnerID   uint   `json:"owner_id"`
	OwnerName string `json:"owner_name"`
}
