package rooms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockify/backend/internal/models"
)

func TestRegistry_CreateGetDelete(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	room := NewRoom("abc234", models.Participant{ID: "c1", Name: "Host"}, friendlySettings(2), time.Now())

	req.NoError(reg.Create(room))
	req.Equal(1, reg.Len())

	got, ok := reg.Get(" abc234 ")
	req.True(ok)
	req.Same(room, got)

	reg.Delete("ABC234")
	_, ok = reg.Get("ABC234")
	req.False(ok)
	req.Zero(reg.Len())

	// deleting twice is harmless
	reg.Delete("ABC234")
}

func TestRegistry_CreateRejectsCollision(t *testing.T) {
	reg := NewRegistry()
	now := time.Now()
	first := NewRoom("QWERTY", models.Participant{ID: "c1", Name: "A"}, friendlySettings(1), now)
	second := NewRoom("qwerty", models.Participant{ID: "c2", Name: "B"}, friendlySettings(1), now)

	require.NoError(t, reg.Create(first))
	err := reg.Create(second)
	assert.ErrorIs(t, err, ErrCodeTaken)

	got, _ := reg.Get("QWERTY")
	assert.Same(t, first, got)
}

func TestRegistry_ForEach(t *testing.T) {
	reg := NewRegistry()
	now := time.Now()
	for i, code := range []string{"AAAAAA", "BBBBBB", "CCCCCC"} {
		host := models.Participant{ID: code, Name: string(rune('a' + i))}
		require.NoError(t, reg.Create(NewRoom(code, host, friendlySettings(1), now)))
	}

	var codes []string
	reg.ForEach(func(r *Room) { codes = append(codes, r.Code()) })
	assert.ElementsMatch(t, []string{"AAAAAA", "BBBBBB", "CCCCCC"}, codes)
}
