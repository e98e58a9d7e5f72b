package user

import "context"

// Filter narrows List results. Username matches as a case-insensitive
// substring.
type Filter struct {
	Username string
	Enabled  *bool
	Limit    int
	Offset   int
}

// Store persists users.
type Store interface {
	Create(ctx context.Context, u User) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]User, error)
}
