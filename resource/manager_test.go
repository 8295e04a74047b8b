package resource

import (
	"errors"
	"testing"
)

func TestManagerDedup(t *testing.T) {
	m := NewManager[*int](nil)

	calls := 0
	factory := func() (*int, error) {
		calls++
		v := 42
		return &v, nil
	}

	a, err := m.GetOrCreate("answer", factory)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	b, err := m.GetOrCreate("answer", factory)
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if a != b {
		t.Error("same key must return the same resource")
	}
	if calls != 1 {
		t.Errorf("factory ran %d times, want 1", calls)
	}
	if got := m.RefCount("answer"); got != 2 {
		t.Errorf("RefCount = %d, want 2", got)
	}
}

func TestManagerRelease(t *testing.T) {
	destroyed := 0
	m := NewManager(func(_ *int) { destroyed++ })

	if _, err := m.GetOrCreate("x", func() (*int, error) { v := 1; return &v, nil }); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := m.GetOrCreate("x", func() (*int, error) { v := 1; return &v, nil }); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if err := m.Release("x"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if destroyed != 0 {
		t.Error("resource destroyed while still referenced")
	}
	if err := m.Release("x"); err != nil {
		t.Fatalf("second Release failed: %v", err)
	}
	if destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", destroyed)
	}
	if got := m.RefCount("x"); got != 0 {
		t.Errorf("RefCount after final release = %d, want 0", got)
	}
	if err := m.Release("x"); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("Release of gone key = %v, want ErrUnknownResource", err)
	}
}

func TestManagerFactoryFailure(t *testing.T) {
	m := NewManager[*int](nil)

	boom := errors.New("boom")
	_, err := m.GetOrCreate("flaky", func() (*int, error) { return nil, boom })
	if !errors.Is(err, ErrResourceCreationFailed) {
		t.Fatalf("GetOrCreate = %v, want ErrResourceCreationFailed", err)
	}
	if got := m.RefCount("flaky"); got != 0 {
		t.Errorf("failed key must not be stored, RefCount = %d", got)
	}

	// The key is not poisoned; a working factory succeeds.
	v, err := m.GetOrCreate("flaky", func() (*int, error) { n := 7; return &n, nil })
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if *v != 7 {
		t.Errorf("*v = %d, want 7", *v)
	}
}

func TestManagerAcquire(t *testing.T) {
	m := NewManager[*int](nil)

	if err := m.Acquire("missing"); !errors.Is(err, ErrUnknownResource) {
		t.Fatalf("Acquire of missing key = %v, want ErrUnknownResource", err)
	}
	if _, err := m.GetOrCreate("x", func() (*int, error) { v := 1; return &v, nil }); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if err := m.Acquire("x"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if got := m.RefCount("x"); got != 2 {
		t.Errorf("RefCount = %d, want 2", got)
	}
}

func TestManagerClear(t *testing.T) {
	destroyed := 0
	m := NewManager(func(_ *int) { destroyed++ })

	for _, key := range []string{"a", "b", "c"} {
		if _, err := m.GetOrCreate(key, func() (*int, error) { v := 1; return &v, nil }); err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
	}
	m.Clear()
	if destroyed != 3 {
		t.Errorf("destroyed = %d, want 3", destroyed)
	}
	if got := m.Len(); got != 0 {
		t.Errorf("Len after Clear = %d, want 0", got)
	}
}
