package tableau

import "context"

// Texture is a decoded image owned by the backend.
type Texture interface {
	Size() (width, height int)
}

// Backend is the rendering engine a Scope computes state for. The scope
// never draws; it asks the backend for the viewport size and for textures.
type Backend interface {
	Viewport() Vec2
	// LoadTexture resolves an asset path. It is called concurrently from
	// several goroutines during Load.
	LoadTexture(ctx context.Context, path string) (Texture, error)
}
