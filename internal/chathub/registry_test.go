package chathub_test

import (
	"fmt"
	"sync"
	"testing"

	"chatservice/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_AddRemove(t *testing.T) {
	r := chathub.NewRegistry()
	a := newMockClient("a", "u1", 1)
	b := newMockClient("b", "u1", 1)

	r.Add(a)
	r.Add(b)
	assert.Len(t, r.Connections("u1"), 2)
	assert.Empty(t, r.Connections("u2"))

	assert.True(t, r.Remove(a))
	assert.False(t, r.Remove(a), "second removal is a no-op")
	assert.Len(t, r.Connections("u1"), 1)

	assert.True(t, r.Remove(b))
	assert.Equal(t, 0, r.Count())

	r.Add(a)
	assert.Len(t, r.Connections("u1"), 1, "a user can reconnect after the last connection left")
}

func TestRegistry_RemoveIgnoresOtherClientWithSameID(t *testing.T) {
	r := chathub.NewRegistry()
	original := newMockClient("same", "u1", 1)
	impostor := newMockClient("same", "u1", 1)
	r.Add(original)

	assert.False(t, r.Remove(impostor))
	assert.Len(t, r.Connections("u1"), 1)
}

func TestRegistry_AddAfterCloseAllClosesTheClient(t *testing.T) {
	r := chathub.NewRegistry()
	early := newMockClient("early", "u1", 1)
	assert.True(t, r.Add(early))

	r.CloseAll()
	assert.True(t, early.IsClosed())

	late := newMockClient("late", "u1", 1)
	assert.False(t, r.Add(late))
	assert.True(t, late.IsClosed())
	assert.Empty(t, r.Connections("u1"))
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_AddRacingCloseAllLeavesNothingOpen(t *testing.T) {
	r := chathub.NewRegistry()
	clients := make([]*MockClient, 100)
	for i := range clients {
		clients[i] = newMockClient(fmt.Sprintf("conn-%d", i), fmt.Sprintf("u%d", i%10), 1)
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *MockClient) {
			defer wg.Done()
			r.Add(c)
		}(c)
	}
	r.CloseAll()
	wg.Wait()

	assert.Equal(t, 0, r.Count())
	for _, c := range clients {
		assert.True(t, c.IsClosed(), c.ID())
	}
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	r := chathub.NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := newMockClient(fmt.Sprintf("conn-%d", i), fmt.Sprintf("u%d", i%5), 1)
			for j := 0; j < 100; j++ {
				r.Add(c)
				_ = r.Connections(c.UserID())
				r.Remove(c)
			}
			r.Add(c)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, r.Count())
	for u := 0; u < 5; u++ {
		assert.Len(t, r.Connections(fmt.Sprintf("u%d", u)), 10)
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	r := chathub.NewRegistry()
	clients := []*MockClient{newMockClient("a", "u1", 1), newMockClient("b", "u2", 1)}
	for _, c := range clients {
		r.Add(c)
	}

	r.CloseAll()

	assert.Equal(t, 0, r.Count())
	for _, c := range clients {
		assert.True(t, c.IsClosed())
	}
}
