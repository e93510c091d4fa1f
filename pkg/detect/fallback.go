package detect

// StatisticalDetector is the call contract for the optional statistical
// charset guesser. It receives every scanned window in order and is
// finalized only when structural UTF-8 validation has failed.
type StatisticalDetector interface {
	// Feed accumulates scanned bytes. Implementations may retain only a
	// bounded sample.
	Feed(p []byte)

	// Close finalizes the model and returns the best-guess label.
	Close() string
}
