package inspect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/mirror/internal/ir"
	"github.com/roach88/mirror/internal/layout"
	"github.com/roach88/mirror/internal/mirror"
	"github.com/roach88/mirror/internal/model"
	"github.com/roach88/mirror/internal/quicklook"
	"github.com/roach88/mirror/internal/store"
)

// DefaultDepth is the expansion depth used when a caller gives none.
const DefaultDepth = 3

// SnapshotStore persists sessions and snapshots. *store.Store implements it.
type SnapshotStore interface {
	WriteSession(ctx context.Context, sess ir.Session) error
	WriteSnapshot(ctx context.Context, snap ir.Snapshot) (bool, error)
	ReadPathHistory(ctx context.Context, path string) ([]ir.Snapshot, error)
	LatestSeq(ctx context.Context) (int64, error)
}

// IDGenerator produces session ids.
type IDGenerator interface {
	Generate() string
}

// Sequencer produces strictly increasing logical timestamps.
type Sequencer interface {
	Next() int64
}

// Inspector answers structural queries against one world.
type Inspector struct {
	world  *model.World
	store  SnapshotStore
	ids    IDGenerator
	clock  Sequencer
	logger *slog.Logger

	mu      sync.Mutex
	session *ir.Session
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithStore enables Record and History.
func WithStore(s SnapshotStore) Option {
	return func(in *Inspector) { in.store = s }
}

// WithIDGenerator sets the session id source. Defaults to UUIDv7.
func WithIDGenerator(g IDGenerator) Option {
	return func(in *Inspector) { in.ids = g }
}

// WithClock sets the logical clock. Defaults to a store.Clock resumed at
// the store's latest seq when the first session opens.
func WithClock(c Sequencer) Option {
	return func(in *Inspector) { in.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(in *Inspector) { in.logger = l }
}

// New creates an inspector over w.
func New(w *model.World, opts ...Option) *Inspector {
	in := &Inspector{
		world:  w,
		ids:    store.UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// World returns the inspected world.
func (in *Inspector) World() *model.World { return in.world }

// Target is a resolved reference.
type Target struct {
	Ref   string
	Value any
}

// Resolve parses ref and follows it to a value.
func (in *Inspector) Resolve(ref string) (Target, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return Target{}, err
	}
	if r.Value == "" {
		if in.world.Root == "" {
			return Target{}, fmt.Errorf("%w: world has no root", ErrUnknownValue)
		}
		r.Value = in.world.Root
	}
	v, ok := in.world.Value(r.Value)
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownValue, r.Value)
	}
	if len(r.Path) > 0 {
		if v, ok = in.world.Reflector.DescendantPath(v, r.Path); !ok {
			return Target{}, fmt.Errorf("%w: %s", ErrNotFound, r)
		}
	}
	return Target{Ref: r.String(), Value: v}, nil
}

// ValueInfo describes one named world value.
type ValueInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Summary string `json:"summary"`
	Root    bool   `json:"root,omitempty"`
}

// Values lists the world's named values in name order.
func (in *Inspector) Values() []ValueInfo {
	names := in.world.Names()
	out := make([]ValueInfo, 0, len(names))
	for _, name := range names {
		v, _ := in.world.Value(name)
		out = append(out, ValueInfo{
			Name:    name,
			Type:    layout.TypeOf(v).Name(),
			Summary: layout.DebugSummary(v),
			Root:    name == in.world.Root,
		})
	}
	return out
}

// Reflect materializes the mirror of the referenced value, expanding depth
// levels of children. A negative depth expands everything.
func (in *Inspector) Reflect(ref string, depth int) (ir.Node, error) {
	t, err := in.Resolve(ref)
	if err != nil {
		return ir.Node{}, err
	}
	return in.world.Reflector.Snapshot(t.Value, depth), nil
}

// Found is the result of a successful descendant lookup.
type Found struct {
	Ref         string `json:"ref"`
	SubjectType string `json:"subject_type"`
	Display     string `json:"display"`
	Summary     string `json:"summary"`
	Children    int    `json:"children"`
}

// Descend looks up the referenced descendant. An absent path is ErrNotFound.
func (in *Inspector) Descend(ref string) (Found, error) {
	t, err := in.Resolve(ref)
	if err != nil {
		return Found{}, err
	}
	m := in.world.Reflector.Reflect(t.Value)
	return Found{
		Ref:         t.Ref,
		SubjectType: m.SubjectType().Name(),
		Display:     m.DisplayHint().String(),
		Summary:     layout.DebugSummary(t.Value),
		Children:    m.Children().Len(),
	}, nil
}

// Ancestors returns the ancestor chain of the referenced value, nearest
// first, each with its own children expanded one level.
func (in *Inspector) Ancestors(ref string) ([]ir.Node, error) {
	n, err := in.Reflect(ref, 1)
	if err != nil {
		return nil, err
	}
	chain := n.Chain()[1:]
	out := make([]ir.Node, len(chain))
	for i, a := range chain {
		out[i] = *a
		out[i].Ancestor = nil
	}
	return out, nil
}

// QuickLook returns the preview of the referenced value.
func (in *Inspector) QuickLook(ref string) (quicklook.Value, error) {
	t, err := in.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return in.world.Reflector.QuickLook(t.Value), nil
}

// Dump writes the tree of the referenced value to w.
func (in *Inspector) Dump(w io.Writer, ref string, opts ...mirror.DumpOption) error {
	t, err := in.Resolve(ref)
	if err != nil {
		return err
	}
	return in.world.Reflector.Dump(w, t.Value, opts...)
}

// Session returns the session opened by Record, if any.
func (in *Inspector) Session() (ir.Session, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.session == nil {
		return ir.Session{}, false
	}
	return *in.session, true
}

// Record snapshots the referenced value into the store. The first call
// opens a session for this inspector.
func (in *Inspector) Record(ctx context.Context, ref string, depth int) (ir.Snapshot, error) {
	if in.store == nil {
		return ir.Snapshot{}, ErrNoStore
	}
	t, err := in.Resolve(ref)
	if err != nil {
		return ir.Snapshot{}, err
	}
	node := in.world.Reflector.Snapshot(t.Value, depth)

	in.mu.Lock()
	defer in.mu.Unlock()
	sess, err := in.openSessionLocked(ctx)
	if err != nil {
		return ir.Snapshot{}, err
	}
	snap, err := ir.NewSnapshot(sess.ID, in.clock.Next(), t.Ref, node)
	if err != nil {
		return ir.Snapshot{}, fmt.Errorf("record %s: %w", t.Ref, err)
	}
	inserted, err := in.store.WriteSnapshot(ctx, snap)
	if err != nil {
		return ir.Snapshot{}, fmt.Errorf("record %s: %w", t.Ref, err)
	}
	in.logger.Info("snapshot recorded",
		"session_id", sess.ID,
		"seq", snap.Seq,
		"ref", t.Ref,
		"node_hash", snap.NodeHash,
		"inserted", inserted)
	return snap, nil
}

// History returns every stored snapshot taken at the referenced path,
// across sessions. The reference is normalized but need not resolve in the
// current world.
func (in *Inspector) History(ctx context.Context, ref string) ([]ir.Snapshot, error) {
	if in.store == nil {
		return nil, ErrNoStore
	}
	r, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	if r.Value == "" {
		r.Value = in.world.Root
	}
	return in.store.ReadPathHistory(ctx, r.String())
}

func (in *Inspector) openSessionLocked(ctx context.Context) (*ir.Session, error) {
	if in.session != nil {
		return in.session, nil
	}
	if in.clock == nil {
		latest, err := in.store.LatestSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("open session: %w", err)
		}
		in.clock = store.NewClockAt(latest)
	}
	sess := ir.Session{
		ID:        in.ids.Generate(),
		Source:    in.world.Source,
		Root:      in.world.Root,
		Seq:       in.clock.Next(),
		Engine:    ir.EngineVersion,
		IRVersion: ir.SchemaVersion,
	}
	if err := in.store.WriteSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	in.logger.Info("session opened", "session_id", sess.ID, "source", sess.Source, "seq", sess.Seq)
	in.session = &sess
	return in.session, nil
}
