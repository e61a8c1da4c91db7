package user

import (
	"context"
	"time"
)

// Role separates customers placing orders from owners running restaurants.
type Role string

const (
	CUSTOMER Role = "CUSTOMER"
	OWNER    Role = "OWNER"
)

// Valid reports whether the role is one of the known role names.
func (r Role) Valid() bool {
	return r == CUSTOMER || r == OWNER
}

// User description. Fields aligned for the GC optimal scanning.
type User struct {
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	Role      Role      `db:"role" json:"role"`
	ID        int       `db:"id" json:"id"`
}

// key is an unexported type for keys defined in this package.
// This prevents collisions with keys defined in other packages.
type key int

// userKey is the key for user.User values in Contexts. It is
// unexported; clients use user.NewContext and user.FromContext
// instead of using this key directly.
var userKey key

// NewContext returns a new Context that carries value u.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext returns the User value stored in ctx, if any.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok
}
