package tokens

import "github.com/golang-jwt/jwt/v5"

type Type string

const (
	Access  Type = "access"
	Refresh Type = "refresh"
)

func (t Type) Valid() bool {
	return t == Access || t == Refresh
}

// Claims is the payload of both token types. The subject is the email the
// token was issued for and ID is the jti recorded in the ledger.
type Claims struct {
	Type Type `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() string { return c.Subject }

func (c *Claims) JTI() string { return c.ID }
