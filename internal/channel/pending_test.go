package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingRegisterReplaces(t *testing.T) {
	p := NewPendingBatches()

	var got string
	p.Register(3, func(ack BatchComplete) { got = "first" })
	p.Register(3, func(ack BatchComplete) { got = "second" })
	assert.Equal(t, 1, p.Len())

	ok := p.Resolve(BatchComplete{Type: TypeBatchComplete, BatchNumber: 3, MessageID: "msg_1"})
	assert.True(t, ok)
	assert.Equal(t, "second", got, "re-registering a batch number replaces the resolver")
}

func TestPendingResolveUnknown(t *testing.T) {
	p := NewPendingBatches()

	assert.False(t, p.Resolve(BatchComplete{BatchNumber: 42}))
	assert.Equal(t, 0, p.Len())
}

func TestPendingLenTracksOutstanding(t *testing.T) {
	p := NewPendingBatches()
	for i := 0; i < 4; i++ {
		p.Register(i, func(BatchComplete) {})
	}
	assert.Equal(t, 4, p.Len())

	p.Resolve(BatchComplete{BatchNumber: 1})
	p.Resolve(BatchComplete{BatchNumber: 3})
	assert.Equal(t, 2, p.Len())
}
