package user

import (
	"strings"
	"time"
)

// SubjectPrefixLocal marks subject identifiers minted for locally
// registered accounts, as opposed to identifiers issued by an external
// identity provider.
const SubjectPrefixLocal = "local:"

// SubjectPrefixPending marks placeholder accounts provisioned for a
// share-target email before that person has ever authenticated.
const SubjectPrefixPending = "pending:"

// User represents a local user record. One is created the first time an
// unseen subject identifier authenticates, or when a task is shared with
// an email that has no account yet.
type User struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	SubjectID    string    `gorm:"uniqueIndex;not null;type:text" json:"-"`
	Email        string    `gorm:"uniqueIndex;not null;type:text" json:"email"`
	DisplayName  string    `gorm:"type:text" json:"display_name,omitempty"`
	PasswordHash string    `gorm:"type:text" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Placeholder reports whether this record was provisioned for a share
// target that has never logged in.
func (u *User) Placeholder() bool {
	return strings.HasPrefix(u.SubjectID, SubjectPrefixPending)
}

// Claims is the verified identity extracted from a bearer credential.
type Claims struct {
	SubjectID   string `json:"subject_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}
