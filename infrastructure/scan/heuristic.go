package scan

import (
	"container/list"
	"image"
)

// PatternConfig holds thresholds for the bar pattern heuristic.
type PatternConfig struct {
	// MinAspectRatio is the minimum width to height ratio of a dark
	// region for it to count as a bar pattern.
	MinAspectRatio float64

	// MinWidth is the minimum region width in pixels.
	MinWidth int

	// MaxBarGap is the widest horizontal run of background pixels that
	// still joins neighboring bars into one region.
	MaxBarGap int
}

// DefaultPatternConfig returns the thresholds tuned for typical 1D barcodes.
func DefaultPatternConfig() *PatternConfig {
	return &PatternConfig{
		MinAspectRatio: 3.0,
		MinWidth:       100,
		MaxBarGap:      8,
	}
}

// PatternDetector finds regions shaped like 1D barcodes without decoding
// them. It backs the "looks like a barcode but would not decode" hint shown
// when a scan comes up empty.
type PatternDetector struct {
	config *PatternConfig
}

// NewPatternDetector creates a detector. A nil config uses defaults.
func NewPatternDetector(config *PatternConfig) *PatternDetector {
	if config == nil {
		config = DefaultPatternConfig()
	}
	return &PatternDetector{config: config}
}

// Detect returns the bounding boxes of wide, bar-like dark regions. The
// dark mask is closed horizontally first so the bars of one symbol read as
// a single region instead of many thin ones.
func (d *PatternDetector) Detect(img image.Image) []image.Rectangle {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	gray := grayscale(img)
	mask := binarizeDark(gray, otsuThreshold(gray))
	mask = closeHorizontal(mask, w, h, d.config.MaxBarGap)
	comps := connectedComponents(mask, w, h)

	var regions []image.Rectangle
	for _, c := range comps {
		cw := c.maxX - c.minX + 1
		ch := c.maxY - c.minY + 1
		if ch == 0 {
			continue
		}
		aspect := float64(cw) / float64(ch)
		if aspect > d.config.MinAspectRatio && cw > d.config.MinWidth {
			regions = append(regions, image.Rect(
				b.Min.X+c.minX, b.Min.Y+c.minY,
				b.Min.X+c.maxX+1, b.Min.Y+c.maxY+1,
			))
		}
	}
	return regions
}

// grayscale converts an image to an 8-bit luminance buffer in row-major order.
func grayscale(img image.Image) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := make([]uint8, w*h)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma weights on the 8-bit channels
			gray[i] = uint8((299*(r>>8) + 587*(g>>8) + 114*(bl>>8)) / 1000)
			i++
		}
	}
	return gray
}

// otsuThreshold picks the luminance cut that maximizes the between-class
// variance of the histogram.
func otsuThreshold(gray []uint8) uint8 {
	if len(gray) == 0 {
		return 128
	}

	const bins = 256
	histogram := make([]int, bins)
	for _, v := range gray {
		histogram[v]++
	}

	totalPixels := len(gray)
	var totalSum float64
	for i := range bins {
		totalSum += float64(i) * float64(histogram[i])
	}

	var maxVariance float64
	bestThreshold := 0
	var sumB float64
	wB := 0

	for t := range bins {
		wB += histogram[t]
		if wB == 0 {
			continue
		}
		wF := totalPixels - wB
		if wF == 0 {
			break
		}

		sumB += float64(t) * float64(histogram[t])
		meanB := sumB / float64(wB)
		meanF := (totalSum - sumB) / float64(wF)

		variance := float64(wB) * float64(wF) * (meanB - meanF) * (meanB - meanF)
		if variance > maxVariance {
			maxVariance = variance
			bestThreshold = t
		}
	}

	return uint8(bestThreshold)
}

// binarizeDark marks pixels at or below the threshold, the ink side of the cut.
func binarizeDark(gray []uint8, threshold uint8) []bool {
	mask := make([]bool, len(gray))
	for i, v := range gray {
		if v <= threshold {
			mask[i] = true
		}
	}
	return mask
}

// closeHorizontal fills background runs of up to maxGap pixels between dark
// pixels on the same row, so the bars of one symbol become one region.
func closeHorizontal(mask []bool, w, h, maxGap int) []bool {
	if maxGap <= 0 {
		return mask
	}

	out := make([]bool, len(mask))
	dLeft := make([]int, w)

	for y := range h {
		row := mask[y*w : (y+1)*w]
		outRow := out[y*w : (y+1)*w]

		// Distance to the nearest dark pixel on the left.
		dist := w + 1
		for x := range w {
			if row[x] {
				dist = 0
			} else if dist <= w {
				dist++
			}
			dLeft[x] = dist
		}

		// Same from the right. A background pixel bounded on both sides
		// by dark pixels at most maxGap apart is filled.
		dist = w + 1
		for x := w - 1; x >= 0; x-- {
			if row[x] {
				dist = 0
				outRow[x] = true
				continue
			}
			if dist <= w {
				dist++
			}
			if dLeft[x]+dist <= maxGap+1 {
				outRow[x] = true
			}
		}
	}
	return out
}

// component tracks the extent of one connected dark region.
type component struct {
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

// connectedComponents finds 4-connected regions in the mask and returns
// their bounding extents.
func connectedComponents(mask []bool, w, h int) []component {
	visited := make([]bool, w*h)
	var comps []component

	for y := range h {
		for x := range w {
			idx := y*w + x
			if mask[idx] && !visited[idx] {
				comps = append(comps, componentBFS(mask, visited, w, h, x, y))
			}
		}
	}
	return comps
}

// componentBFS grows one component from a seed pixel.
func componentBFS(mask []bool, visited []bool, w, h, startX, startY int) component {
	idx := func(x, y int) int { return y*w + x }

	c := component{minX: startX, minY: startY, maxX: startX, maxY: startY}
	q := list.New()
	q.PushBack(idx(startX, startY))
	visited[idx(startX, startY)] = true

	dirs := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	for q.Len() > 0 {
		e := q.Front()
		q.Remove(e)
		ci, ok := e.Value.(int)
		if !ok {
			continue
		}
		cx, cy := ci%w, ci/w

		c.count++
		if cx < c.minX {
			c.minX = cx
		}
		if cy < c.minY {
			c.minY = cy
		}
		if cx > c.maxX {
			c.maxX = cx
		}
		if cy > c.maxY {
			c.maxY = cy
		}

		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx >= 0 && nx < w && ny >= 0 && ny < h {
				ni := idx(nx, ny)
				if mask[ni] && !visited[ni] {
					visited[ni] = true
					q.PushBack(ni)
				}
			}
		}
	}
	return c
}
