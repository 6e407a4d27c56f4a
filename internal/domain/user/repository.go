package user

import (
	"context"
)

// Account is a user plus the credential the development API checks at login.
type Account struct {
	User         User
	PasswordHash string
}

// Repository stores accounts for the development API.
type Repository interface {
	Create(ctx context.Context, account Account) error
	GetByID(ctx context.Context, id string) (Account, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (Account, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User) error
}
