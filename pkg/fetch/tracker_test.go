package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestTrackerLatestWins(t *testing.T) {
	tr := NewTracker[string](context.Background(), "programs")
	defer tr.Close()

	first := tr.Begin(nil)
	second := tr.Begin(nil)

	if first.Ctx.Err() == nil {
		t.Error("first request not cancelled by the second")
	}
	if !tr.State().Pending {
		t.Error("expected pending while second is in flight")
	}

	// The newer response arrives first; the older one must not overwrite it.
	if !tr.Complete(second, "fresh", nil) {
		t.Fatal("current ticket rejected")
	}
	if tr.Complete(first, "stale", nil) {
		t.Fatal("stale ticket applied")
	}
	st := tr.State()
	if st.Pending || st.Value == nil || *st.Value != "fresh" || st.Seq != 2 {
		t.Errorf("state = %+v", st)
	}
}

func TestTrackerOutOfOrderConcurrent(t *testing.T) {
	tr := NewTracker[int](context.Background(), "numbers")
	defer tr.Close()

	tickets := make([]Ticket, 10)
	for i := range tickets {
		tickets[i] = tr.Begin(nil)
	}
	var wg sync.WaitGroup
	for i := len(tickets) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.Complete(tickets[i], i, nil)
		}(i)
	}
	wg.Wait()

	st := tr.State()
	if st.Value == nil || *st.Value != 9 {
		t.Errorf("value = %v, want 9", st.Value)
	}
}

func TestTrackerFailureLeavesValueUndefined(t *testing.T) {
	tr := NewTracker[[]int](context.Background(), "partners")
	defer tr.Close()

	tr.Complete(tr.Begin(nil), []int{1, 2}, nil)
	boom := errors.New("boom")
	tr.Complete(tr.Begin(nil), nil, boom)

	st := tr.State()
	if st.Value != nil || !errors.Is(st.Err, boom) || st.Pending {
		t.Errorf("state after failure = %+v", st)
	}
}

func TestTrackerCloseCancels(t *testing.T) {
	tr := NewTracker[int](context.Background(), "sectors")
	ticket := tr.Begin(nil)
	tr.Close()

	select {
	case <-ticket.Ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("Close did not cancel the in-flight request")
	}
	if tr.Complete(ticket, 1, nil) {
		t.Error("result applied after Close")
	}
	if after := tr.Begin(nil); after.Ctx.Err() == nil {
		t.Error("request begun after Close is not cancelled")
	}
	if tr.State().Pending {
		t.Error("closed tracker reports pending")
	}
}

func TestTrackerParentContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	tr := NewTracker[int](parent, "markers")
	defer tr.Close()

	reqCtx, reqCancel := context.WithCancel(context.Background())
	ticket := tr.Begin(reqCtx)
	reqCancel()
	select {
	case <-ticket.Ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("request context not tied to caller context")
	}

	next := tr.Begin(nil)
	cancel()
	select {
	case <-next.Ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("request context not tied to owner context")
	}
}

func TestTrackerRun(t *testing.T) {
	tr := NewTracker[string](context.Background(), "indicators")

	st, err := tr.Run(context.Background(), func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || st.Value == nil || *st.Value != "ok" {
		t.Fatalf("Run = %+v, %v", st, err)
	}

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := tr.Run(context.Background(), func(ctx context.Context) (string, error) {
			<-release
			return "slow", nil
		})
		done <- err
	}()
	// Wait for the slow request to begin, then supersede it.
	for tr.State().Seq < 2 {
		time.Sleep(time.Millisecond)
	}
	tr.Complete(tr.Begin(nil), "fast", nil)
	close(release)
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("superseded Run error = %v, want context.Canceled", err)
	}
	if v := tr.State().Value; v == nil || *v != "fast" {
		t.Errorf("value = %v, want fast", v)
	}

	tr.Close()
	if _, err := tr.Run(context.Background(), func(ctx context.Context) (string, error) {
		return "late", nil
	}); !errors.Is(err, ErrClosed) {
		t.Errorf("Run after Close = %v, want ErrClosed", err)
	}
}

func TestTrackerInvalidate(t *testing.T) {
	tr := NewTracker[int](context.Background(), "programs")
	defer tr.Close()
	tr.Complete(tr.Begin(nil), 7, nil)
	inflight := tr.Begin(nil)
	tr.Invalidate()
	if tr.Complete(inflight, 8, nil) {
		t.Error("in-flight result applied after Invalidate")
	}
	if st := tr.State(); st.Value != nil || st.Pending {
		t.Errorf("state after Invalidate = %+v", st)
	}
}
