package tableau

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransitionPolicy decides what a reload does with transition progress.
type TransitionPolicy uint8

const (
	// ResetTransitions restarts every timeline from "not started" and
	// resets the session clock to zero on each load.
	ResetTransitions TransitionPolicy = iota
	// PreserveTransitions keeps the session clock running across loads and
	// keeps the playhead of every transition whose identifier and
	// configuration are unchanged.
	PreserveTransitions
)

// Option configures a Scope.
type Option func(*Scope)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scope) { s.logger = l }
}

// WithAssetPrefix is prepended to every sprite asset path.
func WithAssetPrefix(prefix string) Option {
	return func(s *Scope) { s.assetPrefix = prefix }
}

// WithFlipped mirrors the whole scene horizontally.
func WithFlipped(flipped bool) Option {
	return func(s *Scope) { s.flipped = flipped }
}

// WithTransitionPolicy sets the reload policy for transition progress.
func WithTransitionPolicy(p TransitionPolicy) Option {
	return func(s *Scope) { s.policy = p }
}

// WithClock replaces time.Now as the session clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scope) { s.now = now }
}

// Scope is one active scene: the per-kind indices, the parent/child graph,
// the playhead arena and the session clock. It is not safe for concurrent
// use; Load, Update and Apply must run on the host's tick goroutine.
type Scope struct {
	backend     Backend
	logger      *zap.Logger
	session     uuid.UUID
	assetPrefix string
	flipped     bool
	policy      TransitionPolicy
	now         func() time.Time

	sprites     *Index[*Sprite, *SpriteConfig]
	graphics    *Index[*Graphic, *GraphicConfig]
	containers  *Index[*Container, *ContainerConfig]
	filters     *Index[*Filter, *FilterConfig]
	transitions *Index[*Transition, *TransitionConfig]

	graph        relations
	aliases      map[string]Alias
	playheads    map[string]*Playhead
	fingerprints map[string]uint64
	order        []string // transition identifiers in evaluation order

	start   time.Time
	elapsed time.Duration
	seq     int

	running bool
	loading bool
	ticking bool
	loaded  bool
}

// NewScope returns an empty scope drawing through backend. It panics if
// backend is nil.
func NewScope(backend Backend, opts ...Option) *Scope {
	if backend == nil {
		panic("tableau: NewScope with nil backend")
	}
	s := &Scope{
		backend:      backend,
		logger:       zap.NewNop(),
		session:      uuid.New(),
		now:          time.Now,
		sprites:      NewIndex[*Sprite, *SpriteConfig](),
		graphics:     NewIndex[*Graphic, *GraphicConfig](),
		containers:   NewIndex[*Container, *ContainerConfig](),
		filters:      NewIndex[*Filter, *FilterConfig](),
		transitions:  NewIndex[*Transition, *TransitionConfig](),
		graph:        newRelations(),
		aliases:      map[string]Alias{},
		playheads:    map[string]*Playhead{},
		fingerprints: map[string]uint64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.session.String()))
	s.start = s.now()
	return s
}

// Load replaces the scene with cfg. Entities whose identifiers survive are
// reused, the rest are disposed, new sprites get their textures from the
// backend, and every kind is configured in dependency order. On success the
// loop is running and has been evaluated once.
//
// Load returns ErrLoadInProgress while another Load runs and
// ErrReentrantLoad when called from inside Advance. Only texture resolution
// observes ctx.
func (s *Scope) Load(ctx context.Context, cfg *Config) error {
	if s.loading {
		return ErrLoadInProgress
	}
	if s.ticking {
		return ErrReentrantLoad
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.loading = true
	defer func() { s.loading = false }()
	began := time.Now()
	s.Pause()

	cfg = cfg.clone()
	s.aliases = cfg.Aliases

	released := len(s.sprites.Prune(keySet(cfg.Sprites), ClearTags))
	released += len(s.graphics.Prune(keySet(cfg.Graphics), ClearTags))
	released += len(s.containers.Prune(keySet(cfg.Containers), ClearTags))
	released += len(s.filters.Prune(keySet(cfg.Filters), ClearTags))
	kept := s.keepPlayheads(cfg.Transitions)
	s.transitions.Clean()
	s.graph.reset()

	textures, err := s.resolveTextures(ctx, cfg.Sprites)
	if err != nil {
		return err
	}

	if err := s.configureContainers(cfg.Containers); err != nil {
		return err
	}
	if err := s.configureVisuals(cfg.Sprites, cfg.Graphics, textures); err != nil {
		return err
	}
	s.bindMasks()
	if err := s.configureFilters(cfg.Filters); err != nil {
		return err
	}
	if err := s.configureTransitions(cfg.Transitions, kept); err != nil {
		return err
	}

	if s.policy != PreserveTransitions || !s.loaded {
		s.elapsed = 0
	}
	s.loaded = true

	s.logger.Info("scene loaded",
		zap.Int("sprites", s.sprites.Len()),
		zap.Int("graphics", s.graphics.Len()),
		zap.Int("containers", s.containers.Len()),
		zap.Int("filters", s.filters.Len()),
		zap.Int("transitions", s.transitions.Len()),
		zap.Int("textures", len(textures)),
		zap.Int("released", released),
		zap.Int("preserved", len(kept)),
		zap.Duration("took", time.Since(began)),
	)

	s.start = s.now().Add(-s.elapsed)
	s.running = true
	s.Advance(s.elapsed)
	return nil
}

// Start records a new start timestamp and resumes ticking.
func (s *Scope) Start() {
	s.start = s.now()
	s.running = true
}

// Pause stops Update from advancing the scene.
func (s *Scope) Pause() { s.running = false }

// Running reports whether Update advances the scene.
func (s *Scope) Running() bool { return s.running }

// Update is the host tick callback. It advances the scene to the clock's
// elapsed time since Start, or does nothing while paused or loading.
func (s *Scope) Update() {
	if !s.running || s.loading {
		return
	}
	s.Advance(s.now().Sub(s.start))
}

// Elapsed returns the time of the last evaluation.
func (s *Scope) Elapsed() time.Duration { return s.elapsed }

// Viewport returns the backend's viewport size.
func (s *Scope) Viewport() Vec2 { return s.backend.Viewport() }

// Flipped reports whether the whole scene is mirrored horizontally.
func (s *Scope) Flipped() bool { return s.flipped }

// Session returns the session identifier carried by every log entry.
func (s *Scope) Session() string { return s.session.String() }

// Sprite returns the sprite with the given identifier.
func (s *Scope) Sprite(id string) (*Sprite, bool) { return s.sprites.Get(id) }

// Graphic returns the graphic with the given identifier.
func (s *Scope) Graphic(id string) (*Graphic, bool) { return s.graphics.Get(id) }

// Container returns the container with the given identifier.
func (s *Scope) Container(id string) (*Container, bool) { return s.containers.Get(id) }

// Filter returns the filter with the given identifier.
func (s *Scope) Filter(id string) (*Filter, bool) { return s.filters.Get(id) }

// Transition returns the transition with the given identifier.
func (s *Scope) Transition(id string) (*Transition, bool) { return s.transitions.Get(id) }

// Playhead returns the runtime progress of a transition.
func (s *Scope) Playhead(id string) (*Playhead, bool) {
	p, ok := s.playheads[id]
	return p, ok
}

// Visuals returns every sprite and graphic in render order: ascending
// z-index, then creation order.
func (s *Scope) Visuals() []Visual {
	out := make([]Visual, 0, s.sprites.Len()+s.graphics.Len())
	for _, sp := range s.sprites.byIdentifier {
		out = append(out, sp)
	}
	for _, g := range s.graphics.byIdentifier {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Base(), out[j].Base()
		if a.ZIndex != b.ZIndex {
			return a.ZIndex < b.ZIndex
		}
		return a.seq < b.seq
	})
	return out
}

// Containers returns every container in creation order.
func (s *Scope) Containers() []*Container {
	out := make([]*Container, 0, s.containers.Len())
	for _, c := range s.containers.byIdentifier {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (s *Scope) nextSeq() int {
	s.seq++
	return s.seq
}

// locate returns the asset path for a sprite identifier.
func (s *Scope) locate(id string) string {
	if a, ok := s.aliases[id]; ok && a.AssetPath != "" {
		return s.assetPrefix + a.AssetPath
	}
	return s.assetPrefix + id
}

// lookupParent resolves a parent identifier across the kinds that can
// parent a visual, falling back to the alias table.
func (s *Scope) lookupParent(id string) (Ref, bool) {
	if _, ok := s.sprites.Get(id); ok {
		return Ref{KindSprite, id}, true
	}
	if _, ok := s.containers.Get(id); ok {
		return Ref{KindContainer, id}, true
	}
	if _, ok := s.graphics.Get(id); ok {
		return Ref{KindGraphic, id}, true
	}
	if a, ok := s.aliases[id]; ok {
		if _, ok := s.sprites.Get(a.AssetPath); ok {
			return Ref{KindSprite, a.AssetPath}, true
		}
	}
	return Ref{}, false
}

// configureContainers creates or reuses one container per entry and
// resolves it against the root frame.
func (s *Scope) configureContainers(cfgs map[string]*ContainerConfig) error {
	for _, id := range sortedKeys(cfgs) {
		cfg := cfgs[id]
		c, ok := s.containers.Get(id)
		if !ok {
			c = &Container{ScaleX: 1}
			c.seq = s.nextSeq()
		}
		s.containers.Store(id, c, cfg, cfg.Tag)
		s.resolveContainer(c, cfg)
	}
	return nil
}

func (s *Scope) resolveContainer(c *Container, cfg *ContainerConfig) {
	root := RootFrame(s.Viewport())
	w := root.Width * floatOr(cfg.Width, 1)
	h := root.Height * floatOr(cfg.Height, 1)
	center := ResolvePosition(cfg.X, cfg.Y, w, h, root, false)
	c.X, c.Y = center.X, center.Y
	c.Width, c.Height = w, h
	c.Alpha = alphaOrOpaque(cfg.Alpha)
	c.ZIndex = cfg.ZIndex
	c.setFlipped(cfg.Flipped, root.Width)
}

func (c *Container) setFlipped(flipped bool, viewportWidth float64) {
	c.Flipped = flipped
	if flipped {
		c.PivotX, c.ScaleX = viewportWidth, -1
	} else {
		c.PivotX, c.ScaleX = 0, 1
	}
}

// configureVisuals creates or reuses sprites and graphics, links the
// parent graph and resolves everything top-down from the roots.
func (s *Scope) configureVisuals(sprites map[string]*SpriteConfig, graphics map[string]*GraphicConfig, textures map[string]Texture) error {
	for _, id := range sortedKeys(sprites) {
		cfg := sprites[id]
		sp, ok := s.sprites.Get(id)
		if !ok {
			sp = &Sprite{Texture: textures[id]}
			sp.seq = s.nextSeq()
		}
		sp.Filters = nil
		s.sprites.Store(id, sp, cfg, cfg.Tag)
	}
	for _, id := range sortedKeys(graphics) {
		cfg := graphics[id]
		g, ok := s.graphics.Get(id)
		if !ok {
			g = &Graphic{}
			g.seq = s.nextSeq()
		}
		g.Filters = nil
		s.graphics.Store(id, g, cfg, cfg.Tag)
	}

	var roots []Ref
	link := func(self Ref, parent string) {
		if parent == "" {
			roots = append(roots, self)
			return
		}
		p, ok := s.lookupParent(parent)
		if !ok || p == self {
			s.warn(&ReferenceError{Kind: self.Kind, Identifier: self.ID, Field: "parent", Missing: parent})
			roots = append(roots, self)
			return
		}
		s.graph.link(self, p)
	}
	for _, id := range sortedKeys(sprites) {
		link(Ref{KindSprite, id}, sprites[id].Parent)
	}
	for _, id := range sortedKeys(graphics) {
		link(Ref{KindGraphic, id}, graphics[id].Parent)
	}

	visited := make(map[Ref]bool)
	for _, id := range s.containers.Identifiers() {
		if err := s.refresh(Ref{KindContainer, id}, visited); err != nil {
			return err
		}
	}
	for _, ref := range roots {
		if err := s.refresh(ref, visited); err != nil {
			return err
		}
	}

	// Anything unreached hangs off a parent cycle. Cut one member of the
	// cycle loose at the root; its descendants stay attached.
	for _, kind := range [...]Kind{KindSprite, KindGraphic} {
		for _, ref := range s.graph.unvisited(kind, visited) {
			if visited[ref] {
				continue
			}
			member := s.graph.cycleMember(ref)
			s.warn(&ReferenceError{Kind: member.Kind, Identifier: member.ID, Field: "parent", Missing: s.graph.parentOf[member].ID})
			s.graph.unlink(member)
			if err := s.refresh(member, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// refresh re-resolves ref against its parent's current frame, then every
// descendant against theirs.
func (s *Scope) refresh(ref Ref, visited map[Ref]bool) error {
	if visited[ref] {
		return nil
	}
	visited[ref] = true
	if err := s.resolve(ref); err != nil {
		return err
	}
	for _, child := range s.graph.childrenOf[ref] {
		if err := s.refresh(child, visited); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scope) resolve(ref Ref) error {
	parent, group := s.parentFrame(ref)
	switch ref.Kind {
	case KindSprite:
		sp := s.sprites.MustGet(ref.ID)
		cfg, _ := s.sprites.Config(sp)
		resolveSprite(sp, cfg, parent)
		sp.Group = group
	case KindGraphic:
		g := s.graphics.MustGet(ref.ID)
		cfg, _ := s.graphics.Config(g)
		if err := drawGraphic(g, ref.ID, cfg, parent); err != nil {
			return err
		}
		g.Group = group
	case KindContainer:
		c := s.containers.MustGet(ref.ID)
		cfg, _ := s.containers.Config(c)
		s.resolveContainer(c, cfg)
	default:
		return fmt.Errorf("tableau: %s cannot be positioned", ref.Kind)
	}
	return nil
}

// parentFrame returns the frame ref resolves against and the container
// group it belongs to.
func (s *Scope) parentFrame(ref Ref) (Frame, *Container) {
	p, ok := s.graph.parentOf[ref]
	if !ok {
		return RootFrame(s.Viewport()), nil
	}
	switch p.Kind {
	case KindSprite:
		sp := s.sprites.MustGet(p.ID)
		return sp.Frame(), sp.Group
	case KindGraphic:
		g := s.graphics.MustGet(p.ID)
		return g.Frame(), g.Group
	case KindContainer:
		c := s.containers.MustGet(p.ID)
		return c.Frame(), c
	}
	return RootFrame(s.Viewport()), nil
}

func resolveSprite(sp *Sprite, cfg *SpriteConfig, parent Frame) {
	var tw, th float64
	if sp.Texture != nil {
		w, h := sp.Texture.Size()
		tw, th = float64(w), float64(h)
	}
	w, h := spriteSize(cfg, tw, th, parent)
	center := ResolvePosition(cfg.X, cfg.Y, w, h, parent, cfg.UseParentRotation)
	sp.X, sp.Y = center.X, center.Y
	sp.Width, sp.Height = w, h
	sp.Rotation = turnsToRadians(cfg.Rotation)
	sp.Alpha = alphaOrOpaque(cfg.Alpha)
	sp.ZIndex = cfg.ZIndex
}

// spriteSize applies the sprite sizing rule: explicit fractions of the
// parent, one fraction plus an aspect ratio, or the texture's native size.
func spriteSize(cfg *SpriteConfig, tw, th float64, parent Frame) (w, h float64) {
	ratio := 0.0
	if cfg.Ratio != nil {
		ratio = *cfg.Ratio
	} else if th > 0 {
		ratio = tw / th
	}
	switch {
	case cfg.Width != nil && cfg.Height != nil:
		return *cfg.Width * parent.Width, *cfg.Height * parent.Height
	case cfg.Width != nil:
		w = *cfg.Width * parent.Width
		if ratio > 0 {
			h = w / ratio
		}
		return w, h
	case cfg.Height != nil:
		h = *cfg.Height * parent.Height
		return h * ratio, h
	}
	return tw, th
}

// bindMasks points every visual and container at its mask graphic.
func (s *Scope) bindMasks() {
	for id, sp := range s.sprites.byIdentifier {
		cfg, _ := s.sprites.Config(sp)
		sp.Mask = s.maskFor(KindSprite, id, cfg.Mask)
	}
	for id, g := range s.graphics.byIdentifier {
		cfg, _ := s.graphics.Config(g)
		g.Mask = s.maskFor(KindGraphic, id, cfg.Mask)
	}
	for id, c := range s.containers.byIdentifier {
		cfg, _ := s.containers.Config(c)
		c.Mask = s.maskFor(KindContainer, id, cfg.Mask)
	}
}

func (s *Scope) maskFor(kind Kind, id, mask string) *Graphic {
	if mask == "" {
		return nil
	}
	g, ok := s.graphics.Get(mask)
	if !ok {
		s.warn(&ReferenceError{Kind: kind, Identifier: id, Field: "mask", Missing: mask})
		return nil
	}
	return g
}

func (s *Scope) warn(err error) {
	s.logger.Warn("skipping unresolved reference", zap.Error(err))
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// relations is the parent/child graph keyed by kind and identifier.
type relations struct {
	parentOf   map[Ref]Ref
	childrenOf map[Ref][]Ref
}

func newRelations() relations {
	return relations{parentOf: map[Ref]Ref{}, childrenOf: map[Ref][]Ref{}}
}

func (r *relations) reset() {
	clear(r.parentOf)
	clear(r.childrenOf)
}

func (r *relations) link(child, parent Ref) {
	r.parentOf[child] = parent
	r.childrenOf[parent] = append(r.childrenOf[parent], child)
}

func (r *relations) unlink(child Ref) {
	parent, ok := r.parentOf[child]
	if !ok {
		return
	}
	delete(r.parentOf, child)
	siblings := r.childrenOf[parent]
	for i, c := range siblings {
		if c == child {
			r.childrenOf[parent] = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
}

// cycleMember follows parents up from ref and returns the first entity seen
// twice. A chain that ends without repeating returns ref.
func (r *relations) cycleMember(ref Ref) Ref {
	seen := map[Ref]bool{ref: true}
	for cur := ref; ; {
		parent, ok := r.parentOf[cur]
		if !ok {
			return ref
		}
		if seen[parent] {
			return parent
		}
		seen[parent] = true
		cur = parent
	}
}

// unvisited returns the linked entities of kind not in visited, sorted.
func (r *relations) unvisited(kind Kind, visited map[Ref]bool) []Ref {
	var out []Ref
	for child := range r.parentOf {
		if child.Kind == kind && !visited[child] {
			out = append(out, child)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
