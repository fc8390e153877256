package models

import (
	"time"

	"gorm.io/datatypes"
)

// WeightMode selects how a course turns graded work into an overall grade.
type WeightMode string

const (
	// WeightModePerItem applies each assignment's own weight.
	WeightModePerItem WeightMode = "per-item"
	// WeightModeCategory averages per category and applies the course category map.
	WeightModeCategory WeightMode = "category"
)

// Valid returns true when the mode is a supported value.
func (m WeightMode) Valid() bool {
	switch m {
	case WeightModePerItem, WeightModeCategory:
		return true
	default:
		return false
	}
}

// WeightUnit records how weights were authored. The empty unit means "infer".
type WeightUnit string

const (
	WeightUnitAuto     WeightUnit = ""
	WeightUnitFraction WeightUnit = "fraction"
	WeightUnitPercent  WeightUnit = "percent"
)

// Valid returns true when the unit is a supported value.
func (u WeightUnit) Valid() bool {
	switch u {
	case WeightUnitAuto, WeightUnitFraction, WeightUnitPercent:
		return true
	default:
		return false
	}
}

// CategoryWeights maps an assignment category to its share of the course grade.
type CategoryWeights map[AssignmentCategory]float64

// Course is the unit grading schemes and weight budgets are scoped to.
type Course struct {
	ID               string                             `gorm:"primaryKey;size:64" json:"id"`
	Title            string                             `gorm:"size:255;not null" json:"title"`
	OwnerID          string                             `gorm:"size:64;not null" json:"owner_id"`
	InstructorID     *string                            `gorm:"size:64" json:"instructor_id"`
	WeightMode       WeightMode                         `gorm:"size:16;not null;default:per-item" json:"weight_mode"`
	WeightUnit       WeightUnit                         `gorm:"size:16;not null;default:''" json:"weight_unit"`
	CategoryWeights  datatypes.JSONType[CategoryWeights] `json:"category_weights"`
	GradingFinalized bool                               `gorm:"not null;default:false" json:"grading_finalized"`
	WeightRevision   int64                              `gorm:"not null;default:0" json:"weight_revision"`
	CreatedAt        time.Time                          `json:"created_at"`
	UpdatedAt        time.Time                          `json:"updated_at"`
}

// Mode returns the effective weight mode, defaulting to per-item.
func (c Course) Mode() WeightMode {
	if c.WeightMode == "" {
		return WeightModePerItem
	}
	return c.WeightMode
}

// Categories returns the configured category weights, never nil.
func (c Course) Categories() CategoryWeights {
	weights := c.CategoryWeights.Data()
	if weights == nil {
		return CategoryWeights{}
	}
	return weights
}
