package queue

import (
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := New[int](10)

	for i := 0; i < 5; i++ {
		if !q.Push(i) {
			t.Fatalf("Push(%d) returned false", i)
		}
	}

	if q.Len() != 5 {
		t.Errorf("Len() = %d, want 5", q.Len())
	}

	for i := 0; i < 5; i++ {
		v, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop() returned false for item %d", i)
		}
		if v != i {
			t.Errorf("popped %d, want %d", v, i)
		}
	}

	if _, ok := q.TryPop(); ok {
		t.Error("TryPop() on empty queue returned true")
	}
}

func TestQueue_GrowsAt70Percent(t *testing.T) {
	q := New[int](10)

	for i := 0; i < 7; i++ {
		q.Push(i)
	}

	st := q.Stats()
	if st.Cap <= 10 {
		t.Errorf("Cap = %d, expected growth after 70%% fill", st.Cap)
	}
	if st.Grows != 1 {
		t.Errorf("Grows = %d, want 1", st.Grows)
	}
	if st.HighWater != 7 {
		t.Errorf("HighWater = %d, want 7", st.HighWater)
	}
}

func TestQueue_OrderAcrossWrapAndGrow(t *testing.T) {
	q := New[int](4)

	// Force the head away from index 0 before growing.
	q.Push(-1)
	q.TryPop()

	for i := 0; i < 100; i++ {
		q.Push(i)
	}

	for i := 0; i < 100; i++ {
		v, ok := q.TryPop()
		if !ok || v != i {
			t.Fatalf("TryPop() = %d, %v; want %d, true", v, ok, i)
		}
	}

	if st := q.Stats(); st.Pushed != 101 || st.Popped != 101 {
		t.Errorf("Pushed/Popped = %d/%d, want 101/101", st.Pushed, st.Popped)
	}
}

func TestQueue_BlockingPop(t *testing.T) {
	q := New[int](10)
	got := make(chan int, 1)

	go func() {
		if v, ok := q.Pop(); ok {
			got <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push(42)

	select {
	case v := <-got:
		if v != 42 {
			t.Errorf("popped %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for blocked Pop")
	}
}

func TestQueue_Close(t *testing.T) {
	q := New[int](10)
	q.Push(1)
	q.Push(2)
	q.Close()

	if q.Push(3) {
		t.Error("Push should return false after Close")
	}

	for _, want := range []int{1, 2} {
		v, ok := q.Pop()
		if !ok || v != want {
			t.Errorf("Pop() = %d, %v; want %d, true", v, ok, want)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Error("Pop should return false when closed and empty")
	}
}

func TestQueue_CloseUnblocksPop(t *testing.T) {
	q := New[int](10)
	done := make(chan bool, 1)

	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Pop should return false when closed and empty")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock Pop")
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[int](10)
	for i := 0; i < 10; i++ {
		q.Push(i)
	}

	first := q.Drain(4)
	if len(first) != 4 || first[0] != 0 || first[3] != 3 {
		t.Errorf("Drain(4) = %v, want [0 1 2 3]", first)
	}

	rest := q.Drain(0)
	if len(rest) != 6 || rest[0] != 4 {
		t.Errorf("Drain(0) = %v, want [4..9]", rest)
	}

	if got := q.Drain(0); got != nil {
		t.Errorf("Drain on empty = %v, want nil", got)
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := New[int](4)

	const producers = 8
	const perProducer = 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()

	if got := q.Len(); got != producers*perProducer {
		t.Errorf("Len() = %d, want %d", got, producers*perProducer)
	}
}
