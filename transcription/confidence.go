package transcription

// EstimateConfidence derives an overall confidence score from segment
// no-speech probabilities: the unweighted mean of 1 - NoSpeechProb over
// segments that carry the field. Segments without it are skipped, not
// zero-counted. Returns 0.0 when no segment qualifies.
func EstimateConfidence(segments []Segment) float64 {
	var sum float64
	var n int
	for _, seg := range segments {
		if seg.NoSpeechProb == nil {
			continue
		}
		sum += 1 - *seg.NoSpeechProb
		n++
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}
