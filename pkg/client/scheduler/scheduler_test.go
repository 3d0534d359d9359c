package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	quotes map[[32]byte]*Quote
}

func (f *fakeSource) Quote(key [32]byte) *Quote { return f.quotes[key] }

type fakePublisher struct {
	updates   [][32]byte
	aggOnly   [][32]byte
	failNext  bool
}

func (f *fakePublisher) PublishUpdate(key [32]byte, q Quote) error {
	if f.failNext {
		f.failNext = false
		return assert.AnError
	}
	f.updates = append(f.updates, key)
	return nil
}

func (f *fakePublisher) PublishAggregateOnly(key [32]byte) error {
	f.aggOnly = append(f.aggOnly, key)
	return nil
}

func key(b byte) [32]byte {
	var k [32]byte
	k[0] = b
	return k
}

func TestRunCycleVisitsEveryEntryOnce(t *testing.T) {
	src := &fakeSource{quotes: map[[32]byte]*Quote{}}
	pub := &fakePublisher{}
	s := New(src, pub, zerolog.Nop())

	s.Register(key(1))
	s.Register(key(2))
	s.Register(key(3))

	s.RunCycle()

	assert.ElementsMatch(t, []interface{}{key(1), key(2), key(3)}, toInterfaces(pub.aggOnly))
	assert.Empty(t, pub.updates)
}

func TestRegisterIsIdempotent(t *testing.T) {
	s := New(&fakeSource{quotes: map[[32]byte]*Quote{}}, &fakePublisher{}, zerolog.Nop())
	s.Register(key(1))
	s.Register(key(1))
	assert.Equal(t, 1, s.Len())
}

func TestRunCyclePublishesUpdateWhenQuoteAvailable(t *testing.T) {
	k := key(1)
	src := &fakeSource{quotes: map[[32]byte]*Quote{k: {Price: 100}}}
	pub := &fakePublisher{}
	s := New(src, pub, zerolog.Nop())
	s.Register(k)

	s.RunCycle()

	require.Len(t, pub.updates, 1)
	assert.Equal(t, k, pub.updates[0])
}

func TestRunCycleReturnsCursorToStartAfterFullCycle(t *testing.T) {
	src := &fakeSource{quotes: map[[32]byte]*Quote{}}
	pub := &fakePublisher{}
	s := New(src, pub, zerolog.Nop())
	s.Register(key(1))
	s.Register(key(2))

	s.RunCycle()
	firstKidx := s.kidx
	s.RunCycle()

	assert.Equal(t, firstKidx, s.kidx)
}

func toInterfaces(keys [][32]byte) []interface{} {
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}
