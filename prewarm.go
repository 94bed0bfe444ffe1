// prewarm.go - concurrent ahead-of-time texture and sprite decoding.
//
// Nothing in the teacher's own code uses errgroup (verified by grep; it
// rides along only as an indirect ebiten dependency), but it is exactly
// the right shape for this job: texture.go's TextureSet.Load and
// sprite.go's SpriteCache.Load are each independent, each index writes to
// a distinct slice slot, and Archive's loaded-set bookkeeping is
// mutex-protected precisely so many of them can run at once (see
// archive.go). Decoding every wall/flat texture and every sprite for a
// level up front, before the first frame, turns what would otherwise be
// per-frame lazy-decode stalls into one bounded startup cost.
package render

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// preWarmConcurrency caps how many decodes run at once; unbounded
// fan-out over a large sprite range would just thrash the allocator.
func preWarmConcurrency() int {
	if n := runtime.GOMAXPROCS(0); n > 1 {
		return n
	}
	return 1
}

// PreWarmTextures decodes every texture in a set concurrently. A decode
// error or ctx cancellation stops further decodes from starting and
// PreWarmTextures returns the first error encountered.
func PreWarmTextures(ctx context.Context, set *TextureSet) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(preWarmConcurrency())

	for i := 0; i < set.NumTextures(); i++ {
		num := uint32(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return set.Load(num)
		})
	}
	return g.Wait()
}

// PreWarmSprites decodes every sprite resource in [firstResNum, endResNum)
// concurrently, the same way PreWarmTextures does for a texture set.
func PreWarmSprites(ctx context.Context, cache *SpriteCache, firstResNum, endResNum uint32) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(preWarmConcurrency())

	for num := firstResNum; num < endResNum; num++ {
		resNum := num
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := cache.Load(resNum)
			return err
		})
	}
	return g.Wait()
}

// PreWarm decodes every wall and flat texture in lib concurrently, the
// two sets running alongside each other as well as within themselves.
func (lib *TextureLibrary) PreWarm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return PreWarmTextures(ctx, lib.Wall) })
	g.Go(func() error { return PreWarmTextures(ctx, lib.Flat) })
	return g.Wait()
}
