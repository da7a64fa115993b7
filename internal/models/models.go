package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"     json:"id"`
	Email        string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Username     string    `gorm:"uniqueIndex;size:120;not null" json:"username"`
	PasswordHash string    `gorm:"size:140;not null"             json:"-"`
	Firstname    string    `gorm:"size:64"                       json:"firstname"`
	Lastname     string    `gorm:"size:64"                       json:"lastname"`
	IsAdmin      bool      `gorm:"default:false"                 json:"is_admin"`
	CreatedAt    time.Time `gorm:"index"                         json:"createdon"`
}

// IssuedToken is one row of the revocation ledger. Every minted token gets a
// row, revoked or not; Owner is a copy of the token subject, not a foreign key.
type IssuedToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"      json:"token_id"`
	JTI       string    `gorm:"uniqueIndex;size:36;not null"  json:"jti"`
	TokenType string    `gorm:"size:10;not null"              json:"token_type"`
	Owner     string    `gorm:"index;size:120;not null"       json:"user_identity"`
	Revoked   bool      `gorm:"not null;default:false"        json:"revoked"`
	ExpiresAt time.Time `gorm:"index;not null"                json:"expires"`
	CreatedAt time.Time `                                     json:"-"`
}

func (IssuedToken) TableName() string { return "token_blacklist" }

type Item struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Itemname    string    `gorm:"size:64;not null"         json:"itemname"`
	Category    string    `gorm:"size:64;index;not null"   json:"category"`
	Description string    `gorm:"size:300;not null"        json:"description"`
	UserID      uint      `gorm:"index"                    json:"createdby"`
	CreatedAt   time.Time `gorm:"index"                    json:"createdon"`
}

func All() []any {
	return []any{&User{}, &IssuedToken{}, &Item{}}
}
