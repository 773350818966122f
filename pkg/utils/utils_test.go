package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	d1 := HashPassword("secret1")
	d2 := HashPassword("secret1")
	assert.Equal(t, d1, d2) // 同一口令摘要稳定
	assert.Len(t, d1, 64)
	assert.NotEqual(t, d1, HashPassword("secret2"))

	assert.True(t, CheckPassword("secret1", d1))
	assert.False(t, CheckPassword("wrong", d1))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@b.fr"))
	assert.True(t, ValidEmail("user.name@sub.domain.org"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("a b@c.fr"))
	assert.False(t, ValidEmail("a@b"))
}
