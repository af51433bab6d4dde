package selection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct{ reqs []DetailRequest }

func (r *recordingRenderer) Show(_ context.Context, req DetailRequest) { r.reqs = append(r.reqs, req) }

type recordingHost struct {
	state  *State
	opened []int
}

func (h *recordingHost) OpenPanel(_ context.Context, id int) {
	if h.state.Open(id) {
		h.opened = append(h.opened, id)
	}
}

type busyFlag struct{ busy bool }

func (b *busyFlag) SetBusy(v bool) { b.busy = v }

func newMotif(t *testing.T) (*Coordinator, *ManualClock, *recordingRenderer, *recordingHost, *busyFlag) {
	t.Helper()
	clock := NewManualClock()
	state := NewState()
	r := &recordingRenderer{}
	h := &recordingHost{state: state}
	b := &busyFlag{}
	c := NewCoordinator(MotifView, state, clock, r, WithPanelHost(h), WithIndicator(b))
	return c, clock, r, h, b
}

func TestDwellFiresAfterDelay(t *testing.T) {
	c, clock, r, _, b := newMotif(t)

	c.Enter(Target{Index: 2, ItemID: 17})
	assert.Equal(t, Hovering, c.Phase())
	assert.True(t, b.busy)
	assert.True(t, c.Pending())

	clock.Advance(999 * time.Millisecond)
	assert.Empty(t, r.reqs)

	clock.Advance(time.Millisecond)
	require.Len(t, r.reqs, 1)
	assert.Equal(t, DetailRequest{ItemID: 17, SubElementID: NoNode, ClusterPage: -1}, r.reqs[0])
	assert.Equal(t, DetailRequested, c.Phase())
	assert.False(t, c.Pending())
}

func TestLeaveCancelsDwell(t *testing.T) {
	c, clock, r, _, b := newMotif(t)

	c.Enter(Target{Index: 2, ItemID: 17})
	clock.Advance(500 * time.Millisecond)
	c.Leave()

	assert.Equal(t, Idle, c.Phase())
	assert.Equal(t, CancelledOnExit, c.Outcome())
	assert.False(t, b.busy)
	assert.Zero(t, clock.Scheduled())

	clock.Advance(10 * time.Second)
	assert.Empty(t, r.reqs)
}

func TestReEnterReplacesPendingTask(t *testing.T) {
	c, clock, r, _, _ := newMotif(t)

	c.Enter(Target{Index: 1, ItemID: 10})
	clock.Advance(600 * time.Millisecond)
	c.Enter(Target{Index: 2, ItemID: 11})
	clock.Advance(600 * time.Millisecond)
	assert.Empty(t, r.reqs, "first task must not run")

	clock.Advance(400 * time.Millisecond)
	require.Len(t, r.reqs, 1)
	assert.Equal(t, 11, r.reqs[0].ItemID)
}

func TestPlaceholderIgnored(t *testing.T) {
	c, clock, r, h, b := newMotif(t)
	ph := Target{Index: 4, ItemID: -1, Placeholder: true}

	c.Enter(ph)
	assert.Equal(t, Idle, c.Phase())
	assert.False(t, b.busy)
	assert.False(t, c.Click(ph))
	clock.Advance(2 * time.Second)

	assert.Empty(t, r.reqs)
	assert.Empty(t, h.opened)
}

func TestPlaceholderCancelsPendingDwell(t *testing.T) {
	c, clock, r, _, b := newMotif(t)

	c.Enter(Target{Index: 3, ItemID: 12})
	clock.Advance(300 * time.Millisecond)
	c.Enter(Target{Index: 4, ItemID: -1, Placeholder: true})

	assert.Equal(t, Idle, c.Phase())
	assert.False(t, b.busy)
	assert.False(t, c.Pending())
	assert.Zero(t, clock.Scheduled())

	clock.Advance(2 * time.Second)
	assert.Empty(t, r.reqs)
}

func TestMotifClickOpensPanelOnce(t *testing.T) {
	c, _, r, h, _ := newMotif(t)

	assert.True(t, c.Click(Target{Index: 0, ItemID: 5}))
	assert.False(t, c.Click(Target{Index: 0, ItemID: 5}))

	assert.Equal(t, []int{5}, h.opened)
	assert.Equal(t, []int{5}, c.state.Panels())
	assert.True(t, c.state.IsSelected(5))
	assert.Empty(t, r.reqs)
}

func TestGraphletClickFocusesNode(t *testing.T) {
	clock := NewManualClock()
	state := NewState()
	r := &recordingRenderer{}
	c := NewCoordinator(GraphletView, state, clock, r, WithNetwork(3), WithDwell(200*time.Millisecond))

	assert.True(t, c.Click(Target{Index: 7, ItemID: 42}))
	require.Len(t, r.reqs, 1)
	assert.Equal(t, DetailRequest{ItemID: 3, SubElementID: 42, ClusterPage: -1}, r.reqs[0])

	c.Enter(Target{Index: 8, ItemID: 43})
	clock.Advance(200 * time.Millisecond)
	require.Len(t, r.reqs, 2)
	assert.Equal(t, 43, r.reqs[1].SubElementID)
}

func TestDeferredCancelAfterFire(t *testing.T) {
	var posted []func()
	// A loop that queues fired callbacks instead of running them.
	sched := manualPost{clock: NewManualClock(), post: func(fn func()) { posted = append(posted, fn) }}
	d := NewDeferred(sched)

	ran := false
	d.Arm(time.Second, func() { ran = true })
	sched.clock.Advance(time.Second)
	require.Len(t, posted, 1)

	assert.True(t, d.Cancel())
	posted[0]()
	assert.False(t, ran, "cancelled task ran after its timer fired")
	assert.False(t, d.Pending())
}

type manualPost struct {
	clock *ManualClock
	post  func(func())
}

func (m manualPost) AfterFunc(d time.Duration, fn func()) Timer {
	return m.clock.AfterFunc(d, func() { m.post(fn) })
}

func TestLoopScheduler(t *testing.T) {
	loop := make(chan func(), 1)
	d := NewDeferred(LoopScheduler{Post: func(fn func()) { loop <- fn }})
	done := false
	d.Arm(time.Millisecond, func() { done = true })

	select {
	case fn := <-loop:
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("timer never posted")
	}
	assert.True(t, done)
}

func TestStatePaging(t *testing.T) {
	s := NewState()
	_, ok := s.NextPage()
	assert.False(t, ok)

	s.SetPaging(true)
	req := s.Focus(9, 4)
	assert.Equal(t, DetailRequest{ItemID: 9, SubElementID: 4, ClusterPage: 0}, req)

	req, ok = s.NextPage()
	require.True(t, ok)
	assert.Equal(t, DetailRequest{ItemID: 9, SubElementID: NoNode, ClusterPage: 1}, req)

	s.PrevPage()
	req, _ = s.PrevPage()
	assert.Equal(t, 0, req.ClusterPage, "page never goes below zero")

	s.NextPage()
	req = s.Focus(9, 2)
	assert.Equal(t, 1, req.ClusterPage, "same network keeps its page")
	req = s.Focus(10, NoNode)
	assert.Equal(t, 0, req.ClusterPage, "new network starts at page zero")

	s.SetPaging(false)
	assert.Equal(t, -1, s.Request().ClusterPage)
}

func TestStateCloseClearsSelection(t *testing.T) {
	s := NewState()
	s.Open(3)
	s.Select(3)
	s.Open(1)

	assert.Equal(t, []int{1, 3}, s.Panels())
	assert.True(t, s.Close(3))
	assert.False(t, s.IsSelected(3))
	assert.False(t, s.Close(3))
	assert.Equal(t, []int{1}, s.Panels())
}
