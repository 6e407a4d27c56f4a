package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_IsManager(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.IsManager())
	assert.False(t, (&User{Role: RoleEmployee}).IsManager())
	assert.True(t, (&User{Role: RoleManager}).IsManager())
	assert.False(t, (&User{Role: "manager"}).IsManager())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleEmployee.Valid())
	assert.True(t, RoleManager.Valid())
	assert.False(t, Role("OWNER").Valid())
}

func TestProfileUpdate_Apply(t *testing.T) {
	u := User{ID: "u1", Name: "Hana", Department: "Sales"}
	dept := "Engineering"
	ProfileUpdate{Department: &dept}.Apply(&u)

	assert.Equal(t, "Hana", u.Name)
	assert.Equal(t, "Engineering", u.Department)
}
