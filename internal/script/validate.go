package script

// Validate scans every segment of the script and returns the 1-based positions
// of segments that are not ready for synthesis: empty trimmed text or no voice
// assignment. The scan never short-circuits so one report covers all problems.
// An empty result means the whole script is valid.
func Validate(sc *Script) []int {
	var invalid []int
	for i, seg := range sc.Segments {
		if !seg.Valid() {
			invalid = append(invalid, i+1)
		}
	}
	return invalid
}
