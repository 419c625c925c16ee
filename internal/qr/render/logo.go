package render

import (
	"bytes"
	"container/list"
	"crypto/sha256"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// ErrLogoLoad is reported through Surface.LogoErr when a logo cannot be
// decoded. It never fails a render.
var ErrLogoLoad = errors.New("render: logo could not be loaded")

// ErrLogoOcclusion means the logo would hide more codewords than error
// correction can repair at any size.
var ErrLogoOcclusion = errors.New("render: logo does not fit the error correction budget")

// svgRasterSide is the pixel side SVG logos are rasterised at before
// being fitted to the logo box.
const svgRasterSide = 512

// decodeLogo decodes PNG, JPEG, GIF or SVG data.
func decodeLogo(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty logo data")
	}
	if looksLikeSVG(data) {
		return rasterizeSVG(data, svgRasterSide)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func looksLikeSVG(data []byte) bool {
	head := data[:min(len(data), 512)]
	return bytes.Contains(head, []byte("<svg")) ||
		(bytes.HasPrefix(bytes.TrimSpace(head), []byte("<?xml")) && bytes.Contains(data, []byte("<svg")))
}

// rasterizeSVG draws an SVG icon into a side×side RGBA image.
func rasterizeSVG(data []byte, side int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(side), float64(side))

	rgba := image.NewRGBA(image.Rect(0, 0, side, side))
	scanner := rasterx.NewScannerGV(side, side, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(side, side, scanner)
	icon.Draw(dasher, 1.0)
	return rgba, nil
}

const logoCacheSize = 32

type logoEntry struct {
	key [sha256.Size]byte
	img image.Image
	err error
}

// logoCache keeps decoded logos by content hash so repeated renders with
// the same logo decode it once. Failures are cached too.
type logoCache struct {
	mu       sync.Mutex
	items    map[[sha256.Size]byte]*list.Element
	eviction *list.List
}

func newLogoCache() *logoCache {
	return &logoCache{
		items:    make(map[[sha256.Size]byte]*list.Element),
		eviction: list.New(),
	}
}

func (c *logoCache) load(data []byte) (image.Image, error) {
	key := sha256.Sum256(data)

	c.mu.Lock()
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		e := elem.Value.(*logoEntry)
		c.mu.Unlock()
		return e.img, e.err
	}
	c.mu.Unlock()

	img, err := decodeLogo(data)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; !ok {
		c.items[key] = c.eviction.PushFront(&logoEntry{key: key, img: img, err: err})
		if c.eviction.Len() > logoCacheSize {
			oldest := c.eviction.Back()
			c.eviction.Remove(oldest)
			delete(c.items, oldest.Value.(*logoEntry).key)
		}
	}
	return img, err
}

func (c *logoCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}
