package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipal_IsManager(t *testing.T) {
	assert.True(t, Principal{Role: RoleManager}.IsManager())
	assert.True(t, Principal{Role: RoleOwner}.IsManager())
	assert.False(t, Principal{Role: RoleEmployee}.IsManager())
	assert.False(t, Principal{}.IsManager())
}
