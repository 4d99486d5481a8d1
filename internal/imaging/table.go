package imaging

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"flemish/internal/logger"
)

// Handle refers to an image stored in a Table. The zero Handle is empty.
type Handle uint64

var (
	ErrEmpty    = errors.New("image is empty")
	ErrNoHandle = errors.New("unknown image handle")
)

type stored struct {
	mat     gocv.Mat
	preview image.Image
}

// Stats counts the images a Table has stored and released. Bytes is the
// pixel memory currently held.
type Stats struct {
	Stored   int64
	Released int64
	Active   int64
	Bytes    int64
}

// Table owns decoded images. Views keep only handles, so two renders that
// refer to the same handle share one decoded image.
type Table struct {
	mu     sync.Mutex
	images map[Handle]*stored
	last   Handle
	stats  Stats
	log    logger.Logger
}

func NewTable(log logger.Logger) *Table {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	return &Table{images: make(map[Handle]*stored), log: log}
}

// Load decodes the image file at path.
func (t *Table) Load(path string) (Handle, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return 0, fmt.Errorf("load image %s: %w", path, ErrEmpty)
	}
	return t.insert(mat), nil
}

// Decode decodes an encoded image held in memory.
func (t *Table) Decode(data []byte) (Handle, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return 0, fmt.Errorf("decode image: %w", ErrEmpty)
	}
	return t.insert(mat), nil
}

// FromImage stores a copy of img.
func (t *Table) FromImage(img image.Image) (Handle, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return 0, fmt.Errorf("convert image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return 0, fmt.Errorf("convert image: %w", ErrEmpty)
	}
	return t.insert(mat), nil
}

func (t *Table) insert(mat gocv.Mat) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last++
	t.images[t.last] = &stored{mat: mat}
	t.stats.Stored++
	t.stats.Active++
	t.stats.Bytes += matBytes(mat)
	t.log.Debug("ImageTable", "image stored", map[string]interface{}{
		"handle": uint64(t.last),
		"width":  mat.Cols(),
		"height": mat.Rows(),
	})
	return t.last
}

// Size returns the pixel dimensions of h.
func (t *Table) Size(h Handle) (width, height int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.images[h]
	if !ok {
		return 0, 0, ErrNoHandle
	}
	return s.mat.Cols(), s.mat.Rows(), nil
}

// Scale resizes h in place. With proportional set the image is fitted inside
// width x height keeping its aspect ratio; without canExpand it is never
// made larger than it is.
func (t *Table) Scale(h Handle, width, height int, proportional, canExpand bool) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", width, height)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.images[h]
	if !ok {
		return ErrNoHandle
	}
	target := fit(s.mat.Cols(), s.mat.Rows(), width, height, proportional, canExpand)
	if target.X == s.mat.Cols() && target.Y == s.mat.Rows() {
		return nil
	}

	resized := gocv.NewMat()
	gocv.Resize(s.mat, &resized, target, 0, 0, gocv.InterpolationArea)
	t.stats.Bytes += matBytes(resized) - matBytes(s.mat)
	s.mat.Close()
	s.mat = resized
	s.preview = nil
	return nil
}

// CopySized stores a copy of h resized to exactly width x height.
func (t *Table) CopySized(h Handle, width, height int) (Handle, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid dimensions: %dx%d", width, height)
	}

	t.mu.Lock()
	s, ok := t.images[h]
	if !ok {
		t.mu.Unlock()
		return 0, ErrNoHandle
	}
	resized := gocv.NewMat()
	gocv.Resize(s.mat, &resized, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear)
	t.mu.Unlock()

	return t.insert(resized), nil
}

// Image returns h as a Go image for display. The result is cached until the
// image is scaled.
func (t *Table) Image(h Handle) (image.Image, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.images[h]
	if !ok {
		return nil, ErrNoHandle
	}
	if s.preview == nil {
		img, err := s.mat.ToImage()
		if err != nil {
			return nil, fmt.Errorf("convert handle %d: %w", h, err)
		}
		s.preview = img
	}
	return s.preview, nil
}

func (t *Table) Release(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.images[h]; ok {
		t.drop(h, s)
	}
}

func (t *Table) drop(h Handle, s *stored) {
	t.stats.Released++
	t.stats.Active--
	t.stats.Bytes -= matBytes(s.mat)
	s.mat.Close()
	delete(t.images, h)
}

func (t *Table) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func matBytes(m gocv.Mat) int64 {
	return int64(m.Total()) * int64(m.ElemSize())
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.images)
}

// Close releases every stored image.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for h, s := range t.images {
		t.drop(h, s)
	}
	if t.stats.Active != 0 {
		t.log.Warning("ImageTable", "image accounting mismatch after close", map[string]interface{}{
			"active": t.stats.Active,
		})
	}
}

func fit(cols, rows, width, height int, proportional, canExpand bool) image.Point {
	if !proportional {
		if !canExpand {
			width, height = min(width, cols), min(height, rows)
		}
		return image.Point{X: width, Y: height}
	}

	scale := min(float64(width)/float64(cols), float64(height)/float64(rows))
	if !canExpand && scale > 1 {
		scale = 1
	}
	return image.Point{
		X: max(1, int(float64(cols)*scale)),
		Y: max(1, int(float64(rows)*scale)),
	}
}
