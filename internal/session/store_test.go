package session

import (
	"sync"
	"testing"
)

func TestGetReturnsIsolatedCopy(t *testing.T) {
	st := NewStore()
	st.Reset(1)

	s, ok := st.Get(1)
	if !ok {
		t.Fatal("expected session after Reset")
	}
	s.Score = 42
	s.Current().ItemIndex = 3

	again, _ := st.Get(1)
	if again.Score != 0 || again.Current().ItemIndex != 0 {
		t.Fatal("mutating the returned copy leaked into the store")
	}
}

func TestPutCommits(t *testing.T) {
	st := NewStore()
	s := st.Reset(7)
	s.Score = 5
	s.Current().ItemIndex = 2
	st.Put(7, s)

	got, _ := st.Get(7)
	if got.Score != 5 || got.Current().ItemIndex != 2 {
		t.Fatalf("committed state not visible: %+v", got)
	}
}

func TestResetStartsAtFirstExercise(t *testing.T) {
	st := NewStore()
	s := st.Reset(1)
	s.Score = 9
	s.CurrentExercise = 4
	st.Put(1, s)

	fresh := st.Reset(1)
	if fresh.CurrentExercise != 1 || fresh.Score != 0 {
		t.Fatalf("Reset returned stale state: %+v", fresh)
	}
	if len(fresh.PerExercise) != 1 {
		t.Fatalf("fresh state tracks %d exercises, want 1", len(fresh.PerExercise))
	}
}

func TestInProgressAndDelete(t *testing.T) {
	st := NewStore()
	if st.InProgress(1) {
		t.Fatal("empty store reports a session")
	}
	st.Reset(1)
	if !st.InProgress(1) {
		t.Fatal("session missing after Reset")
	}
	st.Delete(1)
	if st.InProgress(1) {
		t.Fatal("session survives Delete")
	}
	if _, ok := st.Get(1); ok {
		t.Fatal("Get finds a deleted session")
	}
}

func TestLockSerializesPerUser(t *testing.T) {
	st := NewStore()
	st.Reset(1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := st.Lock(1)
			defer unlock()
			s, _ := st.Get(1)
			s.Score++
			st.Put(1, s)
		}()
	}
	wg.Wait()

	s, _ := st.Get(1)
	if s.Score != 50 {
		t.Fatalf("score = %d, want 50 (lost update under concurrency)", s.Score)
	}
}

func TestStateEqual(t *testing.T) {
	a := NewState()
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone must equal its source")
	}
	b.Current().ItemIndex = 1
	if a.Equal(b) {
		t.Fatal("diverged states must not be equal")
	}
}

func TestVisited(t *testing.T) {
	s := NewState()
	if !s.Visited(1) {
		t.Fatal("first exercise must count as visited")
	}
	if s.Visited(2) {
		t.Fatal("unvisited exercise reported as visited")
	}
	s.CurrentExercise = 2
	s.Current()
	if !s.Visited(2) {
		t.Fatal("Current must mark the exercise visited")
	}
}
