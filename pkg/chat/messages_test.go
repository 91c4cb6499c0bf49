package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageConstructors(t *testing.T) {
	t.Run("user message trims whitespace", func(t *testing.T) {
		msg := NewUserMessage("  hello  ")
		assert.Equal(t, RoleUser, msg.Role)
		assert.Equal(t, "hello", msg.Content)
		assert.True(t, msg.IsUser())
		assert.False(t, msg.Timestamp.IsZero())
	})

	t.Run("assistant message preserves content", func(t *testing.T) {
		msg := NewAssistantMessage("  spaced  ")
		assert.Equal(t, "  spaced  ", msg.Content)
		assert.True(t, msg.IsAssistant())
	})

	t.Run("system and error roles", func(t *testing.T) {
		assert.True(t, NewSystemMessage("ctx").IsSystem())
		assert.True(t, NewErrorMessage("boom").IsError())
	})

	t.Run("empty detection", func(t *testing.T) {
		assert.True(t, NewUserMessage("   ").IsEmpty())
		assert.False(t, NewUserMessage("hi").IsEmpty())
	})
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleAssistant))
	assert.True(t, ValidRole(RoleSystem))
	assert.False(t, ValidRole(RoleError))
	assert.False(t, ValidRole("tool"))
	assert.False(t, ValidRole(""))
}
