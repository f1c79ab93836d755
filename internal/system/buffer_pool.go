package system

import (
	"image"
	"sync"
)

// MaxPooledSizes bounds how many distinct image sizes the global pool keeps
// buffers for. Photographs of other sizes get unpooled canvases.
const MaxPooledSizes = 8

// ImagePool recycles *image.NRGBA output buffers, keyed by bounds, so that
// a batch of same-sized photographs does not allocate a fresh canvas per
// image. At most maxSizes bounds are tracked.
type ImagePool struct {
	pools    map[image.Rectangle]*sync.Pool
	maxSizes int
	mu       sync.RWMutex
}

func NewImagePool(maxSizes int) *ImagePool {
	return &ImagePool{
		pools:    make(map[image.Rectangle]*sync.Pool),
		maxSizes: maxSizes,
	}
}

var globalPool = NewImagePool(MaxPooledSizes)

// GetImage returns an NRGBA of the given bounds. Its pixels are not
// cleared; callers overwrite every pixel.
func GetImage(rect image.Rectangle) *image.NRGBA {
	return globalPool.Get(rect)
}

func PutImage(img *image.NRGBA) {
	globalPool.Put(img)
}

func (p *ImagePool) Get(rect image.Rectangle) *image.NRGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[rect]
		if !exists && len(p.pools) >= p.maxSizes {
			p.mu.Unlock()
			return image.NewNRGBA(rect)
		}
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					return image.NewNRGBA(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.NRGBA)
}

func (p *ImagePool) Put(img *image.NRGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
