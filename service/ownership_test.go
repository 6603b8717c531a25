package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestOwnershipPolicy(t *testing.T) {
	owner := strPtr("user-1")

	// 内置资源：所有人可见，任何人不可改
	assert.True(t, IsDefaultOwner(nil))
	assert.True(t, CanView(nil, "user-1"))
	assert.True(t, CanView(nil, "user-2"))
	assert.False(t, CanModify(nil, "user-1"))

	// 自定义资源：仅属主可见可改
	assert.False(t, IsDefaultOwner(owner))
	assert.True(t, IsOwnedBy(owner, "user-1"))
	assert.False(t, IsOwnedBy(owner, "user-2"))
	assert.True(t, CanModify(owner, "user-1"))
	assert.False(t, CanModify(owner, "user-2"))
	assert.True(t, CanView(owner, "user-1"))
	assert.False(t, CanView(owner, "user-2"))
}
