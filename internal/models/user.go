package models

import (
	"time"
)

// DefaultProfilePhotoURL is assigned to users until they upload a photo.
const DefaultProfilePhotoURL = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_640.png"

// Image points at an object in external storage. PublicID is empty for
// placeholders that were never uploaded.
type Image struct {
	URL      string `gorm:"size:500" json:"url"`
	PublicID string `gorm:"size:255" json:"publicId"`
}

type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"size:100;not null" json:"username"`
	Email             string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password          string    `gorm:"not null" json:"-"` // bcrypt hash
	ProfilePhoto      Image     `gorm:"embedded;embeddedPrefix:profile_photo_" json:"profilePhoto"`
	Bio               string    `gorm:"type:text" json:"bio"`
	IsAdmin           bool      `gorm:"default:false" json:"isAdmin"`
	IsAccountVerified bool      `gorm:"default:false" json:"isAccountVerified"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	// Filled by explicit preload, never written through the user.
	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
