package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/infigaming-com/gold-monitor/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reading(i int) rate.Reading {
	return rate.Reading{BuyRate: int64(i), SellRate: int64(i) - 1, UpdatedAt: fmt.Sprintf("ts-%d", i)}
}

func TestStore_Empty(t *testing.T) {
	s := NewStore()
	assert.Equal(t, DefaultCapacity, s.Cap())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Snapshot())
	_, ok := s.Last()
	assert.False(t, ok)
	assert.False(t, s.Seen("ts-0"))
}

func TestStore_AppendKeepsOrder(t *testing.T) {
	s := NewStore(WithCapacity(5))
	for i := 0; i < 3; i++ {
		_, evicted := s.Append(reading(i))
		assert.False(t, evicted)
	}

	assert.Equal(t, []rate.Reading{reading(0), reading(1), reading(2)}, s.Snapshot())
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, reading(2), last)
	assert.True(t, s.Seen("ts-1"))
}

func TestStore_BoundedEviction(t *testing.T) {
	tcs := []struct {
		name     string
		capacity int
		extra    int
	}{
		{name: "one over", capacity: 4, extra: 1},
		{name: "many over", capacity: 4, extra: 9},
		{name: "default capacity", capacity: DefaultCapacity, extra: 3},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(WithCapacity(tc.capacity))
			total := tc.capacity + tc.extra
			for i := 0; i < total; i++ {
				s.Append(reading(i))
			}

			snap := s.Snapshot()
			require.Len(t, snap, tc.capacity)
			for i, r := range snap {
				assert.Equal(t, reading(tc.extra+i), r)
			}
			for i := 0; i < tc.extra; i++ {
				assert.False(t, s.Seen(reading(i).UpdatedAt), "evicted timestamp still seen")
			}
			assert.True(t, s.Seen(reading(total-1).UpdatedAt))
			assert.Len(t, s.seen, tc.capacity)
		})
	}
}

func TestStore_AppendReturnsEvicted(t *testing.T) {
	s := NewStore(WithCapacity(2))
	s.Append(reading(1))
	s.Append(reading(2))

	evicted, ok := s.Append(reading(3))
	require.True(t, ok)
	assert.Equal(t, reading(1), evicted)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore(WithCapacity(3))
	s.Append(reading(1))

	snap := s.Snapshot()
	snap[0].BuyRate = 999

	assert.Equal(t, reading(1), s.Snapshot()[0])
}

func TestStore_EvictedTimestampIsAcceptedAgain(t *testing.T) {
	s := NewStore(WithCapacity(2))
	s.Append(reading(1))
	s.Append(reading(2))
	s.Append(reading(3))

	assert.False(t, s.Seen("ts-1"))
	s.Append(reading(1))
	assert.True(t, s.Seen("ts-1"))
	assert.Equal(t, []rate.Reading{reading(3), reading(1)}, s.Snapshot())
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := NewStore(WithCapacity(16))
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				snap := s.Snapshot()
				assert.LessOrEqual(t, len(snap), 16)
				_ = s.Seen("ts-1")
			}
		}()
	}
	for i := 0; i < 200; i++ {
		s.Append(reading(i))
	}
	wg.Wait()
	assert.Equal(t, 16, s.Len())
}
