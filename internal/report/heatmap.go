package report

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/paulmach/orb"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

const (
	heatmapBins     = 75
	heatmapCellPx   = 8
	gaussianSigma   = 1.5
	landmarkRadius  = 3
	heatmapFilename = "density.png"
)

// HeatmapReport renders the record density as a raster image: a binned
// 2-D histogram, blurred and mapped onto a white-to-dark-red ramp, with
// landmark markers overlaid.
type HeatmapReport struct {
	Region    orb.Bound
	Landmarks []domain.Landmark
}

// NewHeatmapReport creates the density image generator.
func NewHeatmapReport(region orb.Bound, landmarks []domain.Landmark) *HeatmapReport {
	return &HeatmapReport{Region: region, Landmarks: landmarks}
}

func (h *HeatmapReport) Name() string { return "heatmap" }

// Generate writes the density image. An empty table produces a valid
// all-white image with landmarks, not an error.
func (h *HeatmapReport) Generate(records []domain.PointOfInterest, outputDir string) error {
	grid := binRecords(records, h.Region)
	grid = gaussianBlur(grid, gaussianSigma)

	img := renderGrid(grid)
	h.drawLandmarks(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return writeArtifact(outputDir, heatmapFilename, buf.Bytes())
}

// binRecords counts records into a heatmapBins×heatmapBins grid. Row 0 is
// the northern edge so the image reads like a map.
func binRecords(records []domain.PointOfInterest, region orb.Bound) [][]float64 {
	grid := make([][]float64, heatmapBins)
	for i := range grid {
		grid[i] = make([]float64, heatmapBins)
	}

	latSpan := region.Max.Lat() - region.Min.Lat()
	lonSpan := region.Max.Lon() - region.Min.Lon()
	if latSpan <= 0 || lonSpan <= 0 {
		return grid
	}

	for _, r := range records {
		col := int((r.Lon - region.Min.Lon()) / lonSpan * heatmapBins)
		row := int((region.Max.Lat() - r.Lat) / latSpan * heatmapBins)
		if col < 0 || col >= heatmapBins || row < 0 || row >= heatmapBins {
			continue
		}
		grid[row][col]++
	}
	return grid
}

// gaussianBlur applies a separable gaussian kernel to the grid.
func gaussianBlur(grid [][]float64, sigma float64) [][]float64 {
	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	rows, cols := len(grid), len(grid[0])
	tmp := make([][]float64, rows)
	out := make([][]float64, rows)
	for i := range tmp {
		tmp[i] = make([]float64, cols)
		out[i] = make([]float64, cols)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := 0.0
			for k, w := range kernel {
				cc := c + k - radius
				if cc < 0 || cc >= cols {
					continue
				}
				v += grid[r][cc] * w
			}
			tmp[r][c] = v
		}
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := 0.0
			for k, w := range kernel {
				rr := r + k - radius
				if rr < 0 || rr >= rows {
					continue
				}
				v += tmp[rr][c] * w
			}
			out[r][c] = v
		}
	}
	return out
}

// renderGrid maps the blurred grid onto pixels, normalizing intensity so
// the densest cell is fully saturated.
func renderGrid(grid [][]float64) *image.RGBA {
	maxV := 0.0
	for _, row := range grid {
		for _, v := range row {
			maxV = math.Max(maxV, v)
		}
	}

	size := heatmapBins * heatmapCellPx
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	for r, row := range grid {
		for c, v := range row {
			t := 0.0
			if maxV > 0 {
				t = v / maxV
			}
			fill := heatColor(t)
			for dy := 0; dy < heatmapCellPx; dy++ {
				for dx := 0; dx < heatmapCellPx; dx++ {
					img.Set(c*heatmapCellPx+dx, r*heatmapCellPx+dy, fill)
				}
			}
		}
	}
	return img
}

// heatColor interpolates white through red to dark red for t in [0,1].
func heatColor(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	if t < 0.5 {
		// white (255,255,255) to red (220,20,20)
		u := t / 0.5
		return color.RGBA{
			R: uint8(255 - u*(255-220)),
			G: uint8(255 - u*(255-20)),
			B: uint8(255 - u*(255-20)),
			A: 255,
		}
	}
	// red (220,20,20) to dark red (139,0,0)
	u := (t - 0.5) / 0.5
	return color.RGBA{
		R: uint8(220 - u*(220-139)),
		G: uint8(20 - u*20),
		B: uint8(20 - u*20),
		A: 255,
	}
}

// drawLandmarks overlays a small dark square for each landmark inside the
// region.
func (h *HeatmapReport) drawLandmarks(img *image.RGBA) {
	latSpan := h.Region.Max.Lat() - h.Region.Min.Lat()
	lonSpan := h.Region.Max.Lon() - h.Region.Min.Lon()
	if latSpan <= 0 || lonSpan <= 0 {
		return
	}

	size := heatmapBins * heatmapCellPx
	mark := color.RGBA{R: 30, G: 30, B: 30, A: 255}

	for _, lm := range h.Landmarks {
		if !h.Region.Contains(lm.Point) {
			continue
		}
		x := int((lm.Point.Lon() - h.Region.Min.Lon()) / lonSpan * float64(size))
		y := int((h.Region.Max.Lat() - lm.Point.Lat()) / latSpan * float64(size))
		for dy := -landmarkRadius; dy <= landmarkRadius; dy++ {
			for dx := -landmarkRadius; dx <= landmarkRadius; dx++ {
				px, py := x+dx, y+dy
				if px < 0 || px >= size || py < 0 || py >= size {
					continue
				}
				img.Set(px, py, mark)
			}
		}
	}
}
