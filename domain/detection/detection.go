package detection

// BoundingBox is an axis-aligned box in normalized image coordinates,
// origin at the top-left corner. All values are in [0,1].
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the box area, zero for degenerate boxes.
func (b BoundingBox) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// Detection is one candidate object instance reported by the vision
// detector. Detections never outlive the ingestion request that
// produced them.
type Detection struct {
	ClassLabel  string      `json:"classLabel"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"boundingBox"`
	Quantity    int         `json:"quantity"`
}

// IoU computes intersection-over-union of two axis-aligned boxes.
// Returns a value in [0,1]; 0 when the boxes do not overlap or when the
// union is empty (degenerate boxes).
func IoU(a, b BoundingBox) float64 {
	ix := overlap(a.X, a.Width, b.X, b.Width)
	iy := overlap(a.Y, a.Height, b.Y, b.Height)
	intersection := ix * iy

	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// overlap returns the 1-D overlap length of two intervals, clamped to zero.
func overlap(start1, len1, start2, len2 float64) float64 {
	lo := max(start1, start2)
	hi := min(start1+len1, start2+len2)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
