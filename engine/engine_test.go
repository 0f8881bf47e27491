package engine

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer"
	"github.com/Carmen-Shannon/sturdy-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeWindow replays a scripted event sequence from ProcessMessages.
type fakeWindow struct {
	width, height int
	events        []func(w *fakeWindow)
	onResize      func(width, height int)
	onClose       func()
	onRedraw      func()
	closed        bool
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetCloseCallback(cb func())                   { w.onClose = cb }
func (w *fakeWindow) SetRedrawCallback(cb func())                  { w.onRedraw = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor   { return nil }
func (w *fakeWindow) IsRunning() bool                              { return !w.closed }
func (w *fakeWindow) Close() error                                 { w.RequestClose(); return nil }
func (w *fakeWindow) Width() int                                   { return w.width }
func (w *fakeWindow) Height() int                                  { return w.height }

func (w *fakeWindow) RequestClose() {
	if w.closed {
		return
	}
	w.closed = true
	if w.onClose != nil {
		w.onClose()
	}
}

func (w *fakeWindow) ProcessMessages() {
	for _, ev := range w.events {
		if w.closed {
			return
		}
		ev(w)
	}
	w.RequestClose()
}

func resize(width, height int) func(*fakeWindow) {
	return func(w *fakeWindow) {
		w.width, w.height = width, height
		w.onResize(width, height)
	}
}

func redraw(w *fakeWindow) { w.onRedraw() }

// fakeRenderer records the calls the engine makes.
type fakeRenderer struct {
	attachErr error
	state     renderer.LifecycleState
	calls     []string
	drawn     []int
}

var _ renderer.Renderer = &fakeRenderer{}

func (r *fakeRenderer) Init() error { return nil }

func (r *fakeRenderer) CreateSurface(handle renderer.WindowHandle, width, height int) error {
	r.calls = append(r.calls, "attach")
	if r.attachErr != nil {
		return r.attachErr
	}
	r.state = renderer.StateAttached
	return nil
}

func (r *fakeRenderer) Render(instances []geometry.InstanceRecord) renderer.FrameStatus {
	if r.state != renderer.StateAttached {
		return renderer.FrameIdle
	}
	r.calls = append(r.calls, "render")
	r.drawn = append(r.drawn, len(instances))
	return renderer.FramePresented
}

func (r *fakeRenderer) Resize(width, height int) {
	r.calls = append(r.calls, "resize")
}

func (r *fakeRenderer) Detach() {
	if r.state != renderer.StateAttached {
		return
	}
	r.state = renderer.StateDetached
	r.calls = append(r.calls, "detach")
}

func (r *fakeRenderer) State() renderer.LifecycleState       { return r.state }
func (r *fakeRenderer) Lifecycle() renderer.SurfaceLifecycle { return nil }
func (r *fakeRenderer) Asset() *geometry.Asset               { return nil }

func TestRunRoutesWindowEvents(t *testing.T) {
	w := &fakeWindow{
		width:  1280,
		height: 720,
		events: []func(*fakeWindow){redraw, resize(0, 0), redraw, resize(1920, 1080), redraw},
	}
	r := &fakeRenderer{}
	frame := 0
	var statuses []renderer.FrameStatus
	e := NewEngine(
		WithWindow(w),
		WithRenderer(r),
		WithInstanceCallback(func(dt float32) []geometry.InstanceRecord {
			frame++
			return make([]geometry.InstanceRecord, frame)
		}),
		WithFrameCallback(func(s renderer.FrameStatus) { statuses = append(statuses, s) }),
	)

	if err := e.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"attach", "render", "resize", "render", "resize", "render", "detach"}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
	if !reflect.DeepEqual(r.drawn, []int{1, 2, 3}) {
		t.Errorf("instances per frame = %v, want [1 2 3]", r.drawn)
	}
	if len(statuses) != 3 || statuses[0] != renderer.FramePresented {
		t.Errorf("frame statuses = %v", statuses)
	}
	if r.State() != renderer.StateDetached {
		t.Errorf("renderer state = %v, want Detached", r.State())
	}
}

func TestRunWithoutInstanceCallbackClearsOnly(t *testing.T) {
	w := &fakeWindow{width: 640, height: 480, events: []func(*fakeWindow){redraw}}
	r := &fakeRenderer{}
	if err := NewEngine(WithWindow(w), WithRenderer(r)).Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !reflect.DeepEqual(r.drawn, []int{0}) {
		t.Errorf("instances per frame = %v, want [0]", r.drawn)
	}
}

func TestRunAttachFailure(t *testing.T) {
	boom := errors.New("no adapter")
	w := &fakeWindow{width: 640, height: 480, events: []func(*fakeWindow){redraw}}
	r := &fakeRenderer{attachErr: boom}
	err := NewEngine(WithWindow(w), WithRenderer(r)).Run()
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if !reflect.DeepEqual(r.calls, []string{"attach"}) {
		t.Errorf("calls = %v, want only the attach", r.calls)
	}
}

func TestRunWithoutWindow(t *testing.T) {
	if err := NewEngine(WithRenderer(&fakeRenderer{})).Run(); !errors.Is(err, ErrNoWindow) {
		t.Errorf("Run() error = %v, want ErrNoWindow", err)
	}
}

func TestRunDetachesOnPanic(t *testing.T) {
	w := &fakeWindow{width: 640, height: 480, events: []func(*fakeWindow){redraw}}
	r := &fakeRenderer{}
	e := NewEngine(WithWindow(w), WithRenderer(r), WithInstanceCallback(func(float32) []geometry.InstanceRecord {
		panic("instance producer")
	}))
	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was swallowed")
			}
		}()
		_ = e.Run()
	}()
	if r.State() != renderer.StateDetached {
		t.Errorf("renderer state = %v, want Detached", r.State())
	}
}

func TestQuit(t *testing.T) {
	var e Engine
	w := &fakeWindow{
		width:  640,
		height: 480,
		events: []func(*fakeWindow){redraw, func(*fakeWindow) { e.Quit() }, redraw},
	}
	r := &fakeRenderer{}
	e = NewEngine(WithWindow(w), WithRenderer(r))
	if err := e.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"attach", "render", "detach"}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
	e.Quit()
}

func TestProfilerToggle(t *testing.T) {
	e := NewEngine(WithRenderer(&fakeRenderer{}), WithProfiling(true), WithProfilingInterval(time.Minute)).(*engine)
	if !e.profilingEnabled {
		t.Error("profiling not enabled by option")
	}
	e.DisableProfiler()
	if e.profilingEnabled {
		t.Error("DisableProfiler() left profiling enabled")
	}
	e.EnableProfiler()
	if !e.profilingEnabled {
		t.Error("EnableProfiler() did not enable profiling")
	}
}

func TestFrameDuration(t *testing.T) {
	tests := []struct {
		fps  float64
		want time.Duration
	}{
		{0, 0},
		{-30, 0},
		{60, time.Second / 60},
		{144, time.Duration(float64(time.Second) / 144)},
	}
	for _, tt := range tests {
		if got := frameDuration(tt.fps); got != tt.want {
			t.Errorf("frameDuration(%v) = %v, want %v", tt.fps, got, tt.want)
		}
	}
}
