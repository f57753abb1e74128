package controller

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// overlapConn trips a flag if two writers ever enter WriteJSON at once,
// which is the condition a real websocket connection panics on.
type overlapConn struct {
	active  int32
	overlap int32
	writes  int32
}

func (c *overlapConn) WriteJSON(_ interface{}) error {
	if !atomic.CompareAndSwapInt32(&c.active, 0, 1) {
		atomic.StoreInt32(&c.overlap, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.StoreInt32(&c.active, 0)
	atomic.AddInt32(&c.writes, 1)
	return nil
}

func TestBroadcastBoardSerializesWritesPerConnection(t *testing.T) {
	conn := &overlapConn{}
	client := &boardClient{conn: conn}
	register(42, 8, client)
	t.Cleanup(func() { unregister(42, 8, client) })

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			BroadcastBoard(42, BoardEvent{Type: EventCardUpdated, ProjectID: 42})
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&conn.overlap) == 1 {
		t.Fatal("two writers entered WriteJSON on the same connection at once")
	}
	if got := atomic.LoadInt32(&conn.writes); got != writers {
		t.Errorf("writes = %d, want %d", got, writers)
	}
}

func TestBroadcastToUserSerializesWritesPerConnection(t *testing.T) {
	conn := &overlapConn{}
	client := &boardClient{conn: conn}
	register(43, 9, client)
	t.Cleanup(func() { unregister(43, 9, client) })

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			BroadcastToUser(9, NotificationEvent{Type: "card_assigned", Title: "x"})
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&conn.overlap) == 1 {
		t.Fatal("two writers entered WriteJSON on the same connection at once")
	}
	if got := atomic.LoadInt32(&conn.writes); got != writers {
		t.Errorf("writes = %d, want %d", got, writers)
	}
}
