//go:build !nofallback

package detect

import (
	"bytes"
	"strings"

	"github.com/saintfish/chardet"
)

// maxFallbackSample bounds the bytes retained for the statistical guess.
// The chardet detector works on a buffer rather than a running model, and
// a 1 MiB prefix is more than its recognizers ever weigh.
const maxFallbackSample = 1 << 20

// chardetDetector adapts github.com/saintfish/chardet to the incremental
// StatisticalDetector contract by buffering a prefix sample.
type chardetDetector struct {
	buf bytes.Buffer
}

func (d *chardetDetector) Feed(p []byte) {
	if d.buf.Len() >= maxFallbackSample {
		return
	}
	if rem := maxFallbackSample - d.buf.Len(); len(p) > rem {
		p = p[:rem]
	}
	d.buf.Write(p)
}

func (d *chardetDetector) Close() string {
	res, err := chardet.NewTextDetector().DetectBest(d.buf.Bytes())
	if err != nil || res.Charset == "" {
		// Nothing the recognizers could name. The content already failed
		// UTF-8 validation, so binary is the remaining honest answer.
		return LabelBinary
	}
	return strings.ToLower(res.Charset)
}

// defaultFallback supplies the statistical detector for New. Building with
// the nofallback tag removes chardet and selects the minimal pipeline.
func defaultFallback() StatisticalDetector {
	return &chardetDetector{}
}
