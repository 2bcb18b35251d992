package utils

import (
	"math"
	"sort"
	"strings"

	"invoice-ocr/dto"
)

// Bucket minimums. Text reconstruction tolerates tighter lines than table
// row grouping does.
const (
	textBucketMin = 5
	rowBucketMin  = 6
)

const fallbackGlyphHeight = 10.0

// Fragment is a detection reduced to its center point.
type Fragment struct {
	X          float64
	Y          float64
	Text       string
	Confidence float64
}

// Band is a horizontal cluster of fragments: one visual line or table row,
// in left-to-right reading order.
type Band struct {
	Key       int
	Fragments []Fragment
}

// Text joins the band's fragments in reading order.
func (b Band) Text() string {
	parts := make([]string, len(b.Fragments))
	for i, f := range b.Fragments {
		parts[i] = f.Text
	}
	return strings.Join(parts, " ")
}

// ClusterBands groups detections into horizontal bands keyed by a y bucket.
// The bucket size derives from the median glyph height: 0.6 of a line keeps
// adjacent text lines apart while still absorbing OCR jitter. Output is
// deterministic regardless of input order.
func ClusterBands(dets []dto.Detection, minBucket int) []Band {
	if len(dets) == 0 {
		return nil
	}

	heights := make([]float64, 0, len(dets))
	for _, d := range dets {
		_, _, minY, maxY := quadBounds(d.Box)
		heights = append(heights, maxY-minY)
	}
	sort.Float64s(heights)
	median := fallbackGlyphHeight
	if len(heights) > 0 {
		median = heights[len(heights)/2]
	}

	bucket := int(math.Round(median * 0.6))
	if bucket < minBucket {
		bucket = minBucket
	}

	groups := make(map[int][]Fragment)
	for _, d := range dets {
		minX, maxX, minY, maxY := quadBounds(d.Box)
		frag := Fragment{
			X:          (minX + maxX) / 2.0,
			Y:          (minY + maxY) / 2.0,
			Text:       d.Text,
			Confidence: d.Confidence,
		}
		key := int(math.Floor(frag.Y / float64(bucket)))
		groups[key] = append(groups[key], frag)
	}

	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	bands := make([]Band, 0, len(keys))
	for _, k := range keys {
		frags := groups[k]
		sort.Slice(frags, func(i, j int) bool {
			if frags[i].X != frags[j].X {
				return frags[i].X < frags[j].X
			}
			return frags[i].Text < frags[j].Text
		})
		bands = append(bands, Band{Key: k, Fragments: frags})
	}
	return bands
}

// ReconstructText rebuilds the document text from detections: bands top to
// bottom, fragments left to right. Empty input yields an empty string.
func ReconstructText(dets []dto.Detection) string {
	bands := ClusterBands(dets, textBucketMin)
	if len(bands) == 0 {
		return ""
	}
	lines := make([]string, len(bands))
	for i, b := range bands {
		lines[i] = b.Text()
	}
	return strings.Join(lines, "\n")
}

func quadBounds(box [4]dto.Point) (minX, maxX, minY, maxY float64) {
	minX, maxX = box[0].X, box[0].X
	minY, maxY = box[0].Y, box[0].Y
	for _, p := range box[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, maxX, minY, maxY
}
