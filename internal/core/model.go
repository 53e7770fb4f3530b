package core

import (
	"time"
)

// Classifier result codes. Anything outside this set is treated as a
// classifier failure.
const (
	ResultSpam = 0
	ResultHam  = 1
)

// Verdict represents the classification outcome for one request
type Verdict int

const (
	VerdictSpam Verdict = iota
	VerdictHam
	VerdictError
)

// String returns the internal name of the verdict, used in logs and stats
func (v Verdict) String() string {
	switch v {
	case VerdictSpam:
		return "spam"
	case VerdictHam:
		return "ham"
	default:
		return "error"
	}
}

// WireToken returns the ASCII token transmitted to the client. The
// gateway fails open: an error verdict goes out as "ham", never as
// "spam" and never as a literal error token.
func (v Verdict) WireToken() string {
	if v == VerdictSpam {
		return "spam"
	}
	return "ham"
}

// VerdictFromCode maps a classifier result code onto a verdict
func VerdictFromCode(code int) Verdict {
	switch code {
	case ResultSpam:
		return VerdictSpam
	case ResultHam:
		return VerdictHam
	default:
		return VerdictError
	}
}

// StatsRecord is emitted once per completed request. Verdict carries
// the internal classification, which for failed classifications is
// VerdictError even though the wire response was "ham".
type StatsRecord struct {
	Verdict Verdict
	Elapsed time.Duration
}
