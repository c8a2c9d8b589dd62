package group

// AggregateProgress averages the member progress values that are at least 1.
// Smaller values are not yet meaningful and are skipped. ok is false when no
// value qualifies.
func AggregateProgress(values []float64) (mean float64, ok bool) {
	sum := 0.0
	n := 0
	for _, v := range values {
		if v < 1 {
			continue
		}
		if v > 100 {
			v = 100
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func (c *Controller) recomputeProgress() {
	values := make([]float64, 0, len(c.windows))
	for _, id := range c.windows {
		if w, ok := c.lookup(id); ok {
			values = append(values, w.Progress)
		}
	}
	c.progress, c.hasProgress = AggregateProgress(values)
}

// ProgressExtent is the length of the progress overlay along a button of the
// given length.
func ProgressExtent(length int, progress float64) int {
	if progress <= 0 || length <= 0 {
		return 0
	}
	if progress > 100 {
		progress = 100
	}
	extent := int(float64(length)*progress/100 + 0.5)
	if extent < 1 {
		extent = 1
	}
	return extent
}
