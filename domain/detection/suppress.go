package detection

import "sort"

// DefaultIoUThreshold is the overlap ratio at or above which two
// same-class detections are considered duplicates.
const DefaultIoUThreshold = 0.5

// Suppress performs class-aware greedy non-max suppression over the raw
// detections of a single image, keeping one representative per spatial
// cluster of same-class detections.
//
// The sort is stable: equal confidences keep their input order, so the
// output is deterministic for identical inputs. Detections of different
// classes never suppress each other, however much they overlap.
func Suppress(detections []Detection, iouThreshold float64) []Detection {
	if len(detections) == 0 {
		return []Detection{}
	}

	pool := make([]Detection, len(detections))
	copy(pool, detections)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Confidence > pool[j].Confidence
	})

	kept := make([]Detection, 0, len(pool))
	for len(pool) > 0 {
		head := pool[0]
		kept = append(kept, head)

		remaining := pool[:0]
		for _, d := range pool[1:] {
			if d.ClassLabel == head.ClassLabel && IoU(head.BoundingBox, d.BoundingBox) >= iouThreshold {
				continue
			}
			remaining = append(remaining, d)
		}
		pool = remaining
	}

	return kept
}
