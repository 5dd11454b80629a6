package ebitenstage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/phanxgames/tableau"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Background fills the screen before the scene is drawn. The zero value
	// is opaque black.
	Background tableau.Color
	// ShowFPS draws the actual FPS and TPS in the top-left corner.
	ShowFPS bool
	// OnHit, when set, receives the topmost visual under every left click.
	OnHit func(tableau.Hit)
	// Logger receives failures of queued loads and property changes.
	Logger *zap.Logger
	// Queue is the number of pending changes Submit and Apply accept before
	// blocking. Defaults to 16.
	Queue int
}

// Game adapts a scope and a stage to ebiten.Game. Changes submitted from
// other goroutines are queued and run on the tick goroutine, the only
// place the scope may be touched.
type Game struct {
	scope  *tableau.Scope
	stage  *Stage
	cfg    RunConfig
	logger *zap.Logger

	pending chan func() error
	done    chan struct{}
}

// NewGame returns a game ticking scope and drawing it through stage.
func NewGame(scope *tableau.Scope, stage *Stage, cfg RunConfig) *Game {
	if cfg.Queue <= 0 {
		cfg.Queue = 16
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		scope:   scope,
		stage:   stage,
		cfg:     cfg,
		logger:  logger,
		pending: make(chan func() error, cfg.Queue),
		done:    make(chan struct{}),
	}
}

// Submit queues a scene load. It is safe to call from any goroutine.
func (g *Game) Submit(cfg *tableau.Config) {
	g.enqueue(func() error {
		if err := g.scope.Load(context.Background(), cfg); err != nil {
			return fmt.Errorf("load: %w", err)
		}
		return nil
	})
}

// Apply queues a single property change. It is safe to call from any
// goroutine.
func (g *Game) Apply(kind tableau.Kind, id, property string, value any) {
	g.enqueue(func() error {
		return g.scope.Apply(kind, id, property, value)
	})
}

func (g *Game) enqueue(fn func() error) {
	select {
	case <-g.done:
		return
	default:
	}
	select {
	case g.pending <- fn:
	case <-g.done:
	}
}

// Close stops accepting changes. Calls to Submit and Apply after Close
// return without queueing.
func (g *Game) Close() {
	select {
	case <-g.done:
	default:
		close(g.done)
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}
	g.drain()
	g.scope.Update()

	if g.cfg.OnHit != nil && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if hit, ok := g.scope.HitTest(float64(x), float64(y)); ok {
			g.cfg.OnHit(hit)
		}
	}
	return nil
}

// drain runs every queued change without waiting for more.
func (g *Game) drain() {
	for {
		select {
		case fn := <-g.pending:
			if err := fn(); err != nil {
				g.logger.Error("queued change failed", zap.Error(err))
			}
		default:
			return
		}
	}
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	bg := g.cfg.Background
	if bg == (tableau.Color{}) {
		bg = tableau.Color{A: 1}
	}
	screen.Fill(bg.NRGBA())
	g.stage.Draw(screen, g.scope)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

// Layout implements ebiten.Game. The logical screen is the stage viewport.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.stage.Size()
}

// Run opens a window sized to the stage and ticks scope until the window
// closes.
func Run(scope *tableau.Scope, stage *Stage, cfg RunConfig) error {
	return RunGame(NewGame(scope, stage, cfg))
}

// RunGame opens a window for an existing game, for hosts that keep the
// game to call Submit from other goroutines.
func RunGame(g *Game) error {
	w, h := g.stage.Size()
	ebiten.SetWindowSize(w, h)
	if g.cfg.Title != "" {
		ebiten.SetWindowTitle(g.cfg.Title)
	}
	err := ebiten.RunGame(g)
	g.Close()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
