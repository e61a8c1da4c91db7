package claims

import "github.com/golang-jwt/jwt/v4"

// Auth is the claim set carried by the authorization token.
type Auth struct {
	jwt.RegisteredClaims
	UserID int `json:"uid"`
}
