//go:build nofallback

package detect

// Without the chardet dependency there is no statistical detector, and
// New degrades to the minimal pipeline.
func defaultFallback() StatisticalDetector {
	return nil
}
