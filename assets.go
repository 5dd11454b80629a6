package tableau

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// maxTextureLoads bounds concurrent backend texture requests.
const maxTextureLoads = 8

// resolveTextures asks the backend for the texture of every sprite that is
// not already indexed. Requests run in parallel, each writing only its own
// slot; the map is assembled after all of them finish.
func (s *Scope) resolveTextures(ctx context.Context, sprites map[string]*SpriteConfig) (map[string]Texture, error) {
	var ids []string
	for _, id := range sortedKeys(sprites) {
		if _, ok := s.sprites.Get(id); !ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	slots := make([]Texture, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxTextureLoads)
	for i, id := range ids {
		path := s.locate(id)
		g.Go(func() error {
			tex, err := s.backend.LoadTexture(gctx, path)
			if err != nil {
				return fmt.Errorf("tableau: sprite %q: load texture %q: %w", id, path, err)
			}
			slots[i] = tex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	textures := make(map[string]Texture, len(ids))
	for i, id := range ids {
		textures[id] = slots[i]
	}
	return textures, nil
}
