package evaluate

// Band grades a pronunciation attempt against the target sentence.
type Band int

const (
	// BandRetry means the attempt was too far off; the item does not advance.
	BandRetry Band = iota
	// BandAcceptable means the attempt passes but could be better.
	BandAcceptable
	// BandExcellent means a near-perfect read.
	BandExcellent
)

const (
	excellentThreshold  = 80
	acceptableThreshold = 60
)

// Pronounce compares a transcript against a target sentence using only the
// fuzzy ratio and maps it onto feedback bands. Items advance from
// BandAcceptable upward.
func Pronounce(userText, target string) (Band, int) {
	ratio := Ratio(Normalize(userText), Normalize(target))
	switch {
	case ratio >= excellentThreshold:
		return BandExcellent, ratio
	case ratio >= acceptableThreshold:
		return BandAcceptable, ratio
	default:
		return BandRetry, ratio
	}
}

// Advances reports whether the band lets the exercise move to the next item.
func (b Band) Advances() bool { return b >= BandAcceptable }
