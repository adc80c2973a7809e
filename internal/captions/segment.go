package captions

import "strings"

const (
	// DefaultWordsPerCue is the group size used when none is configured.
	DefaultWordsPerCue = 6
	// MinCueDuration is the floor on each cue's on-screen time. With many
	// groups over a short video the cues can run past the video's end.
	MinCueDuration = 0.5
)

// Anchor places a cue on the frame.
type Anchor struct {
	Horizontal string
	Vertical   string
}

// BottomCenter is where every cue is drawn.
var BottomCenter = Anchor{Horizontal: "center", Vertical: "bottom"}

// Cue is one timed caption.
type Cue struct {
	Text     string
	Start    float64 // seconds
	Duration float64 // seconds
	Anchor   Anchor
}

// End returns the time the cue leaves the screen.
func (c Cue) End() float64 {
	return c.Start + c.Duration
}

// Segment splits transcript into cues of wordsPerCue words, spread evenly
// across videoDuration and laid end to end from t=0. A transcript with no
// words yields no cues.
func Segment(transcript string, videoDuration float64, wordsPerCue int) []Cue {
	if wordsPerCue <= 0 {
		wordsPerCue = DefaultWordsPerCue
	}

	words := strings.Fields(transcript)
	if len(words) == 0 {
		return nil
	}

	groups := (len(words) + wordsPerCue - 1) / wordsPerCue
	duration := max(videoDuration/float64(groups), MinCueDuration)

	cues := make([]Cue, 0, groups)
	start := 0.0
	for i := 0; i < len(words); i += wordsPerCue {
		end := min(i+wordsPerCue, len(words))
		cues = append(cues, Cue{
			Text:     strings.Join(words[i:end], " "),
			Start:    start,
			Duration: duration,
			Anchor:   BottomCenter,
		})
		start += duration
	}
	return cues
}

// Coverage returns the time span covered by cues.
func Coverage(cues []Cue) float64 {
	if len(cues) == 0 {
		return 0
	}
	return cues[len(cues)-1].End()
}
