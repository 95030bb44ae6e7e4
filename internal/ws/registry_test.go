package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/thetronjohnson/layrr/internal/session"
)

func TestRegistryCurrentIsNewest(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Current())

	a := session.New(session.Config{}, nil, nil, zap.NewNop())
	b := session.New(session.Config{}, nil, nil, zap.NewNop())

	r.Register(a)
	r.Register(b)
	assert.Equal(t, 2, r.Len())
	assert.Same(t, b, r.Current())

	// The newest dropping out falls back to the older survivor.
	r.Unregister(b)
	assert.Same(t, a, r.Current())

	r.Unregister(a)
	assert.Nil(t, r.Current())
}
