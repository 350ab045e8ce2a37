package sched

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/grid"
)

func TestQueueDrainsInFIFOOrder(t *testing.T) {
	q := NewQueue()
	q.Schedule(OpenWorld{Path: "a.sav"})
	q.Schedule(TickMark{})
	q.Schedule(SaveWorld{Path: "b.sav"})

	tasks := q.Drain()
	require.Len(t, tasks, 3)
	assert.Equal(t, OpenWorld{Path: "a.sav"}, tasks[0])
	assert.Equal(t, TickMark{}, tasks[1])
	assert.Equal(t, SaveWorld{Path: "b.sav"}, tasks[2])

	assert.Empty(t, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestScheduleUpdateWrapsBlockWork(t *testing.T) {
	q := NewQueue()
	ran := 0
	meta := grid.BlockMeta{Position: grid.Vec2i{X: 4, Y: -2}, Direction: grid.West}
	q.ScheduleUpdate(func(w block.World, m grid.BlockMeta) {
		ran++
		assert.Equal(t, meta, m)
	}, meta)

	tasks := q.Drain()
	require.Len(t, tasks, 1)
	upd, ok := tasks[0].(UpdateBlock)
	require.True(t, ok)
	assert.Equal(t, meta, upd.Meta)
	upd.Fn(nil, upd.Meta)
	assert.Equal(t, 1, ran)
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue()
	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				q.Schedule(TickMark{})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, q.Len())
	assert.Len(t, q.Drain(), producers*perProducer)
}

func TestQueueInterleavesKinds(t *testing.T) {
	q := NewQueue()
	q.ScheduleUpdate(func(block.World, grid.BlockMeta) {}, grid.BlockMeta{})
	q.Schedule(TickMark{})
	q.Schedule(LoadFailed{Err: assert.AnError})

	tasks := q.Drain()
	require.Len(t, tasks, 3)
	_, isUpdate := tasks[0].(UpdateBlock)
	assert.True(t, isUpdate)
	_, isMark := tasks[1].(TickMark)
	assert.True(t, isMark)
	failed, isFailed := tasks[2].(LoadFailed)
	require.True(t, isFailed)
	assert.ErrorIs(t, failed.Err, assert.AnError)
}
