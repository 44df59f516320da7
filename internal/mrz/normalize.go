package mrz

import (
	"bytes"
	"image"
	"math"
	"sort"

	// register the decoders for the upload formats the service accepts
	_ "image/jpeg"
	_ "image/png"

	"mrzreader/pkg/serrors"

	xdraw "golang.org/x/image/draw"
)

// Band is a normalized candidate crop believed to contain the MRZ, together
// with the geometric transform that produced it. Candidates are ordered
// best-first by their quality score.
type Band struct {
	// Image is the binarized, resampled crop handed to the recognizer.
	Image *image.Gray
	// Rotation is the deskew angle in degrees applied before cropping.
	Rotation float64
	// Flipped is true when the band was found in the 180-degree orientation,
	// the common failure mode of handheld captures.
	Flipped bool
	// Crop is the rectangle cut from the (deskewed) source image.
	Crop image.Rectangle
	// Threshold is the Otsu binarization threshold that was used.
	Threshold uint8
	// Score is the band-quality heuristic: aspect-ratio match and ink density.
	Score float64
}

const (
	// maxSkewDegrees bounds the deskew search; MRZ captures beyond this are
	// hopeless for a line-projection approach anyway.
	maxSkewDegrees  = 5.0
	skewStepDegrees = 0.5

	// targetBandHeight is the height candidates are resampled to before
	// recognition, roughly 45 pixels per text line for a three-line zone.
	targetBandHeight = 140

	// minInkFraction is the minimum fraction of dark pixels a region must
	// carry to be considered printed content rather than sensor noise.
	minInkFraction = 0.005
)

// Normalize deskews, binarizes and crops the encoded image down to at most
// maxBands candidate MRZ bands, ordered best-first. An empty result means no
// plausible band was found; the pipeline short-circuits to an Unreadable
// result. An undecodable image is the only hard failure.
func Normalize(data []byte, maxBands int) ([]Band, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrInvalidImage, err, "could not decode image")
	}
	if maxBands <= 0 {
		maxBands = 3
	}

	gray := toGray(img)
	bands := findBands(gray, maxBands, false)
	if len(bands) == 0 {
		// retry the upside-down orientation before giving up
		bands = findBands(rotate180(gray), maxBands, true)
	}

	return bands, nil
}

// findBands runs the detection pass over one orientation of the image.
func findBands(g *image.Gray, maxBands int, flipped bool) []Band {
	threshold := otsuThreshold(g)

	angle := estimateSkew(g, threshold)
	if math.Abs(angle) >= skewStepDegrees {
		g = rotateGray(g, -angle)
	}
	bin := binarize(g, threshold)

	groups := textRowGroups(bin)
	bands := make([]Band, 0, len(groups))
	for _, grp := range groups {
		crop, density := groupCrop(bin, grp)
		if crop.Empty() || density < minInkFraction {
			continue
		}
		score := bandScore(crop, grp.runs, density)
		if score <= 0 {
			continue
		}
		bands = append(bands, Band{
			Image:     resample(bin, crop),
			Rotation:  angle,
			Flipped:   flipped,
			Crop:      crop,
			Threshold: threshold,
			Score:     score,
		})
	}

	// best-first, stable so equal scores keep top-to-bottom order
	sort.SliceStable(bands, func(i, j int) bool { return bands[i].Score > bands[j].Score })
	if len(bands) > maxBands {
		bands = bands[:maxBands]
	}

	return bands
}

// rowGroup is a cluster of adjacent text rows: a candidate block of MRZ lines.
type rowGroup struct {
	top, bottom int
	runs        int // number of distinct text-row runs merged into the group
}

// textRowGroups locates horizontal runs of ink-dense rows and merges runs
// separated by small inter-line gaps. MRZ zones show up as 2-3 tightly spaced
// runs near the bottom of the document.
func textRowGroups(bin *image.Gray) []rowGroup {
	b := bin.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	density := make([]float64, h)
	for y := 0; y < h; y++ {
		dark := 0
		row := bin.Pix[y*bin.Stride : y*bin.Stride+w]
		for _, p := range row {
			if p == 0 {
				dark++
			}
		}
		density[y] = float64(dark) / float64(w)
	}
	density = smooth(density, 2)

	peak := 0.0
	for _, d := range density {
		peak = math.Max(peak, d)
	}
	floor := math.Max(0.04, 0.25*peak)

	// collect runs of text rows
	type run struct{ top, bottom int }
	var runs []run
	inRun := false
	for y := 0; y < h; y++ {
		if density[y] >= floor {
			if !inRun {
				runs = append(runs, run{top: y, bottom: y})
				inRun = true
			} else {
				runs[len(runs)-1].bottom = y
			}

			continue
		}
		inRun = false
	}

	// merge runs separated by inter-line gaps into groups
	gap := max(2, h/50)
	var groups []rowGroup
	for _, r := range runs {
		if n := len(groups); n > 0 && r.top-groups[n-1].bottom <= gap {
			groups[n-1].bottom = r.bottom
			groups[n-1].runs++

			continue
		}
		groups = append(groups, rowGroup{top: r.top, bottom: r.bottom, runs: 1})
	}

	// the MRZ lives in the lower part of the document
	kept := groups[:0]
	for _, grp := range groups {
		center := (grp.top + grp.bottom) / 2
		if center*3 >= h && grp.bottom > grp.top {
			kept = append(kept, grp)
		}
	}

	return kept
}

// groupCrop derives the crop rectangle for a row group from its horizontal
// ink extent, with a small margin, and returns the ink density inside it.
func groupCrop(bin *image.Gray, grp rowGroup) (image.Rectangle, float64) {
	b := bin.Bounds()
	w := b.Dx()

	left, right := w, -1
	dark := 0
	for y := grp.top; y <= grp.bottom; y++ {
		row := bin.Pix[y*bin.Stride : y*bin.Stride+w]
		for x, p := range row {
			if p != 0 {
				continue
			}
			dark++
			if x < left {
				left = x
			}
			if x > right {
				right = x
			}
		}
	}
	if right < left {
		return image.Rectangle{}, 0
	}

	margin := max(2, (grp.bottom-grp.top)/6)
	crop := image.Rect(left-margin, grp.top-margin, right+margin+1, grp.bottom+margin+1).
		Intersect(image.Rect(0, 0, w, b.Dy()))
	area := crop.Dx() * crop.Dy()
	if area == 0 {
		return image.Rectangle{}, 0
	}

	return crop, float64(dark) / float64(area)
}

// bandScore ranks a candidate by how MRZ-like it looks: a wide, shallow strip
// of 1-3 text rows with moderate ink coverage. Typical MRZ bands have an
// aspect ratio around 7-12 depending on line count.
func bandScore(crop image.Rectangle, runs int, density float64) float64 {
	aspect := float64(crop.Dx()) / float64(crop.Dy())
	if aspect < 2 {
		return 0
	}
	aspectFit := 1.0 / (1.0 + math.Abs(math.Log(aspect/9.0)))

	lineFit := 0.5
	if runs >= 2 && runs <= 3 {
		lineFit = 1.0
	}

	inkFit := math.Min(1.0, density*8)

	return aspectFit * lineFit * inkFit
}

// resample cuts the crop out of the binarized image and scales it up to the
// recognizer-friendly band height. Small captures are upscaled at most 4x;
// larger crops pass through untouched.
func resample(bin *image.Gray, crop image.Rectangle) *image.Gray {
	src := bin.SubImage(crop).(*image.Gray)
	h := crop.Dy()
	if h >= targetBandHeight {
		out := image.NewGray(image.Rect(0, 0, crop.Dx(), h))
		xdraw.Copy(out, image.Point{}, src, crop, xdraw.Src, nil)

		return out
	}

	factor := math.Min(4, float64(targetBandHeight)/float64(h))
	dst := image.NewGray(image.Rect(0, 0, int(float64(crop.Dx())*factor), int(float64(h)*factor)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)

	return dst
}

// toGray converts any decoded image to 8-bit grayscale.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Src)

	return out
}

// otsuThreshold computes the global binarization threshold maximizing
// between-class variance over the grayscale histogram.
func otsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	total := 0
	b := g.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		for _, p := range row {
			hist[p]++
			total++
		}
	}
	if total == 0 {
		return 128
	}

	sum := 0.0
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	sumB, wB := 0.0, 0
	best, bestVar := 128, -1.0
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			best = t
		}
	}

	return uint8(best)
}

// binarize maps ink to 0 and background to 255.
func binarize(g *image.Gray, threshold uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x, p := range src {
			if p < threshold {
				dst[x] = 0
			} else {
				dst[x] = 255
			}
		}
	}

	return out
}

// estimateSkew finds the small rotation that best aligns text rows with the
// horizontal axis, by shear-projecting dark pixels onto the y axis and
// maximizing the projection-profile variance. Pixels are subsampled for speed.
func estimateSkew(g *image.Gray, threshold uint8) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	margin := int(float64(w)*math.Tan(maxSkewDegrees*math.Pi/180)) + 1

	bestAngle, bestVar := 0.0, -1.0
	for a := -maxSkewDegrees; a <= maxSkewDegrees+1e-9; a += skewStepDegrees {
		t := math.Tan(a * math.Pi / 180)
		hist := make([]int, h+2*margin)
		n := 0
		for y := 0; y < h; y += 2 {
			row := g.Pix[y*g.Stride : y*g.Stride+w]
			for x := 0; x < w; x += 2 {
				if row[x] >= threshold {
					continue
				}
				yy := y - int(float64(x)*t) + margin
				if yy >= 0 && yy < len(hist) {
					hist[yy]++
					n++
				}
			}
		}
		if n == 0 {
			return 0
		}
		mean := float64(n) / float64(len(hist))
		v := 0.0
		for _, c := range hist {
			d := float64(c) - mean
			v += d * d
		}
		if v > bestVar {
			bestVar = v
			bestAngle = a
		}
	}

	return bestAngle
}

// rotateGray rotates the image by the given angle in degrees around its
// center using inverse nearest-neighbor mapping, filling with background.
func rotateGray(g *image.Gray, degrees float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for i := range out.Pix {
		out.Pix[i] = 255
	}

	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// inverse rotation back into the source
			dx, dy := float64(x)-cx, float64(y)-cy
			sx := int(cos*dx + sin*dy + cx)
			sy := int(-sin*dx + cos*dy + cy)
			if sx >= 0 && sx < w && sy >= 0 && sy < h {
				out.Pix[y*out.Stride+x] = g.Pix[sy*g.Stride+sx]
			}
		}
	}

	return out
}

// rotate180 flips the image upside down.
func rotate180(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = g.Pix[(h-1-y)*g.Stride+(w-1-x)]
		}
	}

	return out
}

// smooth applies a moving average with the given radius.
func smooth(vals []float64, radius int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		lo, hi := max(0, i-radius), min(len(vals)-1, i+radius)
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += vals[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}

	return out
}
