// Package tableau is a declarative scene-animation layer for 2D renderers.
//
// A client describes a scene once per load: sprites, vector graphics,
// containers, filters and keyframe transitions, keyed by identifier. A
// [Scope] turns that description into resolved numeric state (absolute
// positions, sizes, rotations, colors, filter parameters and shape
// geometry) and advances the transitions on every host tick. The package
// never draws; a [Backend] supplies the viewport and textures, and the
// ebitenstage package renders the state with [Ebitengine].
//
// # Quick start
//
//	stage := ebitenstage.New(800, 600, os.DirFS("assets"))
//	scope := tableau.NewScope(stage, tableau.WithLogger(logger))
//	cfg, _ := tableau.LoadYAML(file)
//	if err := scope.Load(ctx, cfg); err != nil { ... }
//	ebitenstage.Run(scope, stage, ebitenstage.RunConfig{Title: "scene"})
//
// # Positions
//
// Every axis is an [AnchoredPosition]: a parent anchor picks a reference
// point on the parent (0 near edge, 0.5 center, 1 far edge), the value
// shifts it by a fraction of the parent's extent, and the self anchor picks
// the point of the entity placed there. Entities without a parent are
// placed against the whole viewport. Children of a rotated parent may turn
// with it (useParentRotation). Rotation is written in turns.
//
// # Transitions
//
// A transition drives one property of every entity its inclusion rule
// matches through parallel frames and times (milliseconds). Numbers,
// arrays and records interpolate leaf by leaf through a named easing;
// masks and flips step. With repeat set the timeline loops forever.
//
// [Ebitengine]: https://ebitengine.org
package tableau
