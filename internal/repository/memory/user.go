package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/google/uuid"
)

type userRepositoryImpl struct {
	mu       sync.RWMutex
	accounts map[string]user.Account
	byEmpID  map[string]string
}

func NewUserRepository() user.Repository {
	return &userRepositoryImpl{
		accounts: make(map[string]user.Account),
		byEmpID:  make(map[string]string),
	}
}

// Create implements user.Repository.
func (r *userRepositoryImpl) Create(ctx context.Context, account user.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmpID[account.User.EmployeeID]; exists {
		return fmt.Errorf("employee id %q already registered", account.User.EmployeeID)
	}
	if account.User.ID == "" {
		account.User.ID = uuid.NewString()
	}
	if account.User.CreatedAt == nil {
		now := time.Now()
		account.User.CreatedAt = &now
	}

	r.accounts[account.User.ID] = account
	r.byEmpID[account.User.EmployeeID] = account.User.ID
	return nil
}

// GetByID implements user.Repository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return user.Account{}, user.ErrUserNotFound
	}
	return account, nil
}

// GetByEmployeeID implements user.Repository.
func (r *userRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (user.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmpID[employeeID]
	if !ok {
		return user.Account{}, user.ErrUserNotFound
	}
	return r.accounts[id], nil
}

// List implements user.Repository. Users are ordered by employee id.
func (r *userRepositoryImpl) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]user.User, 0, len(r.accounts))
	for _, account := range r.accounts {
		users = append(users, account.User)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].EmployeeID < users[j].EmployeeID })
	return users, nil
}

// Update implements user.Repository. The password hash is kept.
func (r *userRepositoryImpl) Update(ctx context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[u.ID]
	if !ok {
		return user.ErrUserNotFound
	}
	now := time.Now()
	u.UpdatedAt = &now
	account.User = u
	r.accounts[u.ID] = account
	return nil
}
