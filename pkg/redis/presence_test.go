package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresence_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()

	for _, p := range []*Presence{nil, NewPresence(nil)} {
		assert.False(t, p.Enabled())
		assert.NoError(t, p.Online(ctx, "alice"))
		assert.NoError(t, p.Offline(ctx, "alice"))

		users, err := p.OnlineUsers(ctx)
		assert.ErrorIs(t, err, ErrDisabled)
		assert.Nil(t, users)
	}
}

func TestPresenceKey(t *testing.T) {
	assert.Equal(t, "study:presence:user:alice", presenceKey("alice"))
}
