package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bundle type
const (
	BundleFixed       = "fixed"
	BundlePickYourOwn = "pick_your_own"
	BundleTiered      = "tiered"
)

// Bundle is a sellable group of courses
type Bundle struct {
	gorm.Model
	Name                string    `json:"name"`
	Slug                string    `json:"slug" gorm:"uniqueIndex;not null"`
	Description         string    `json:"description" gorm:"type:text"`
	BundleType          string    `json:"bundle_type" gorm:"default:'fixed'"`
	MaxCourseSelections int       `json:"max_course_selections" gorm:"default:0"` // for pick-your-own
	Price               float64   `json:"price" gorm:"default:0"`
	IsActive            bool      `json:"is_active" gorm:"default:true"`
	Courses             []*Course `json:"-" gorm:"many2many:bundle_courses"`
}

// BundlePurchase is a validated purchase fact for a bundle. Expansion into
// per-course grants happens in utils.GrantBundleAccess.
type BundlePurchase struct {
	gorm.Model
	UserID       uint            `json:"user_id" gorm:"index;not null"`
	BundleID     uint            `json:"bundle_id" gorm:"index;not null"`
	PurchaseID   string          `json:"purchase_id"` // external order id
	PurchaseDate time.Time       `json:"purchase_date"`
	SelectedCourseIDs datatypes.JSONSlice[uint] `json:"selected_course_ids"` // for pick-your-own bundles
	Notes        string          `json:"notes" gorm:"type:text"`
}
