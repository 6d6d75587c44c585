package db

import (
	"time"
)

// User table
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Name         string    `gorm:"size:80;not null" json:"name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Email        string    `gorm:"size:120;not null" json:"email"`
	Photo        string    `gorm:"size:120" json:"photo"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

// MaxProfilesPerUser caps how many profiles one account may own.
const MaxProfilesPerUser = 3

// Profile is one of up to MaxProfilesPerUser attribute sets a user can create
// to be matched and searched.
//
// BirthYear and Height are pointers because both are optional on creation and
// the match engine must distinguish "absent" from a real value: candidates
// with either field missing are excluded from matching rather than treated as
// automatic (non-)matches.
type Profile struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint64    `gorm:"not null;index" json:"user_id"`
	Description      string    `gorm:"size:255" json:"description"`
	Parish           string    `gorm:"size:80" json:"parish"`
	Biography        string    `gorm:"size:255" json:"biography"`
	Sex              string    `gorm:"size:20" json:"sex"`
	Race             string    `gorm:"size:50" json:"race"`
	BirthYear        *int      `json:"birth_year"`
	Height           *float64  `json:"height"` // meters
	FavCuisine       string    `gorm:"size:80" json:"fav_cuisine"`
	FavColour        string    `gorm:"size:80" json:"fav_colour"`
	FavSchoolSubject string    `gorm:"size:80" json:"fav_school_subject"`
	Political        bool      `json:"political"`
	Religious        bool      `json:"religious"`
	FamilyOriented   bool      `json:"family_oriented"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// Favourite is a directed edge: UserID has favourited FavUserID.
//
// Composite PK (UserID, FavUserID) makes duplicate favouriting a database-level
// no-op: concurrent duplicate requests cannot create two rows for the same
// pair, and inserts go through ON CONFLICT DO NOTHING.
type Favourite struct {
	UserID    uint64    `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FavUserID uint64    `gorm:"primaryKey;autoIncrement:false" json:"fav_user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
