package script

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/navstack/pkg/animation"
	"github.com/go-drift/navstack/pkg/errors"
	"github.com/go-drift/navstack/pkg/logging"
	"github.com/go-drift/navstack/pkg/navigation"
)

// Options configures a replay.
type Options struct {
	// Resolver supplies animation durations. Defaults to animation.DefaultCatalog.
	Resolver animation.Resolver
	// DefaultAnimation is given to owners that do not declare their own.
	DefaultAnimation *animation.Spec
	Logger           *zap.Logger
	// Realtime runs owners on real loopers and wall-clock time instead of
	// virtual time.
	Realtime bool
	// SettleLimit bounds the virtual time the final settle may take.
	SettleLimit time.Duration
}

func (o Options) withDefaults() Options {
	if o.Resolver == nil {
		o.Resolver = animation.DefaultCatalog()
	}
	if o.DefaultAnimation == nil {
		o.DefaultAnimation = animation.Default()
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.SettleLimit <= 0 {
		o.SettleLimit = time.Minute
	}
	return o
}

// Result is the outcome of a replay, one entry per owner in script order.
type Result struct {
	Owners []OwnerResult
}

// OwnerResult records what happened to one owner.
type OwnerResult struct {
	Name      string
	Snapshots []Snapshot
	Faults    []string
	Finished  int64
	Completed int64
	Elapsed   time.Duration
}

// Snapshot is the owner's visible state after a step.
type Snapshot struct {
	Step       int
	Op         string
	At         time.Duration
	Containers []ContainerState
}

// ContainerState is one container's stack, bottom first.
type ContainerState struct {
	ID      string
	State   navigation.StackState
	Screens []ScreenState
}

// ScreenState describes one screen in a snapshot.
type ScreenState struct {
	ID      string
	Type    string
	Tag     string
	Visible bool
}

// Run replays s. Owners run concurrently, each on its own looper.
func Run(ctx context.Context, s *Script, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	results := make([]OwnerResult, len(s.Owners))

	g, ctx := errgroup.WithContext(ctx)
	for i, o := range s.Owners {
		i, o := i, o
		g.Go(func() error {
			res, err := runOwner(ctx, o, opts)
			if err != nil {
				return fmt.Errorf("owner %q: %w", o.Name, err)
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Result{Owners: results}, nil
}

func runOwner(ctx context.Context, o Owner, opts Options) (*OwnerResult, error) {
	drv := newDriver(opts)
	defer drv.close()

	logger := opts.Logger.With(zap.String("owner", o.Name))
	faults := &faultLog{next: errors.NewLogHandler(logger, false)}
	owner := &simOwner{anim: opts.DefaultAnimation}
	if o.DefaultAnimation != nil {
		owner.anim = o.DefaultAnimation
	}
	nav := navigation.NewNavigator(owner, drv,
		navigation.WithResolver(opts.Resolver),
		navigation.WithLogger(logger),
		navigation.WithErrorHandler(faults),
	)
	defer nav.Close()

	r := &replay{
		nav:        nav,
		owner:      owner,
		order:      o.Containers,
		containers: make(map[string]*navigation.MemoryContainer, len(o.Containers)),
		screens:    make(map[string]*navigation.Screen),
		scope:      navigation.NewScope(),
	}
	for _, id := range o.Containers {
		c := navigation.NewMemoryContainer(id, navigation.WithEnterAnimations(drv, opts.Resolver))
		nav.RegisterContainer(c)
		r.containers[id] = c
	}
	r.scope.SetRoot(nav, r.containers[o.Containers[0]])

	res := &OwnerResult{Name: o.Name}
	for i, st := range o.Steps {
		logger.Debug("step", zap.Int("index", i+1), zap.String("op", st.Op))
		if st.Op == OpWait {
			if err := drv.wait(ctx, time.Duration(st.Duration)); err != nil {
				return nil, err
			}
		} else {
			r.apply(st)
			if err := drv.step(ctx); err != nil {
				return nil, err
			}
		}
		res.Snapshots = append(res.Snapshots, r.snapshot(i+1, st.Op, drv.elapsed()))
	}

	if err := drv.finish(ctx, nav.Queue()); err != nil {
		return nil, err
	}
	res.Snapshots = append(res.Snapshots, r.snapshot(len(o.Steps)+1, "end", drv.elapsed()))
	res.Faults = faults.list()
	res.Finished = owner.finished.Load()
	res.Completed = nav.Queue().Completed()
	res.Elapsed = drv.elapsed()
	return res, nil
}

type replay struct {
	nav        *navigation.Navigator
	owner      *simOwner
	order      []string
	containers map[string]*navigation.MemoryContainer
	screens    map[string]*navigation.Screen
	scope      *navigation.Scope
}

func (r *replay) apply(st Step) {
	c := r.containers[st.Container]
	switch st.Op {
	case OpLoadRoot:
		r.nav.LoadRoot(c, r.screen(st.Screen, st.Type), r.owner.DefaultAnimation(), st.PlayEnterAnim)
	case OpLoadMultipleRoots:
		screens := make([]*navigation.Screen, len(st.Screens))
		for i, ref := range st.Screens {
			screens[i] = r.screen(ref.ID, ref.Type)
		}
		index := st.Index
		if index == 0 {
			index = 1
		}
		r.nav.LoadMultipleRoots(c, index, screens...)
	case OpPush:
		r.nav.Push(r.screens[st.From], r.screen(st.To, st.Type))
	case OpPushRemoveSource:
		r.nav.PushAndRemoveSource(r.screens[st.From], r.screen(st.To, st.Type))
	case OpPop:
		r.nav.Pop(c)
	case OpPopTo:
		r.nav.PopTo(c, st.Type, st.IncludeTarget)
	case OpSilentRemove:
		screens := make([]*navigation.Screen, len(st.Screens))
		for i, ref := range st.Screens {
			screens[i] = r.screens[ref.ID]
		}
		r.nav.SilentRemove(c, screens...)
	case OpShowHide:
		r.nav.ShowHideAll(c, r.screens[st.Show])
	case OpBack:
		if c != nil {
			r.nav.OnBackPressed(c)
		} else {
			r.scope.HandleBackButton()
		}
	}
}

// screen returns the screen scripted under id, creating it on first use.
// Reusing an id hands the engine the same screen again.
func (r *replay) screen(id, typ string) *navigation.Screen {
	if s, ok := r.screens[id]; ok {
		return s
	}
	name := screenType(id, typ)
	s := navigation.NewScreen(navigation.ScreenType{Name: name, FullName: "navsim/screens." + name}, id)
	r.screens[id] = s
	return s
}

func (r *replay) snapshot(step int, op string, at time.Duration) Snapshot {
	snap := Snapshot{Step: step, Op: op, At: at}
	for _, id := range r.order {
		c := r.containers[id]
		cs := ContainerState{ID: id, State: navigation.StateOf(c)}
		for _, s := range c.Screens() {
			cs.Screens = append(cs.Screens, ScreenState{
				ID:      s.Handle.(string),
				Type:    s.Type().Name,
				Tag:     s.Tag(),
				Visible: c.IsVisible(s),
			})
		}
		snap.Containers = append(snap.Containers, cs)
	}
	return snap
}

type simOwner struct {
	anim     *animation.Spec
	finished atomic.Int64
}

func (o *simOwner) DefaultAnimation() *animation.Spec { return o.anim }
func (o *simOwner) Finish()                           { o.finished.Inc() }

// faultLog records faults for the report and forwards them to next.
type faultLog struct {
	next errors.ErrorHandler

	mu     sync.Mutex
	faults []string
}

func (f *faultLog) HandleError(err *errors.NavError) {
	f.record(err.Error())
	f.next.HandleError(err)
}

func (f *faultLog) HandlePanic(err *errors.PanicError) {
	f.record(err.Error())
	f.next.HandlePanic(err)
}

func (f *faultLog) record(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = append(f.faults, msg)
}

func (f *faultLog) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.faults...)
}
