package transcriber

// residueEpsilon stops the window loop once less than a millisecond of
// audio is left, so float residue never produces an extra empty window.
const residueEpsilon = 1e-3

// Window is one planned slice of the audio stream, in seconds.
type Window struct {
	Index  int
	Offset float64
	Length float64
}

// End returns the offset just past the window.
func (w Window) End() float64 {
	return w.Offset + w.Length
}

// PlanWindows carves [0, total) into consecutive windows of at most
// chunkLength seconds. The final window is clamped to the remaining audio.
// A zero total or a non-positive chunkLength yields no windows.
func PlanWindows(total, chunkLength float64) []Window {
	if total <= 0 || chunkLength <= 0 {
		return nil
	}

	var windows []Window
	processed := 0.0
	for processed < total-residueEpsilon {
		length := min(chunkLength, total-processed)
		windows = append(windows, Window{Index: len(windows), Offset: processed, Length: length})
		processed += length
	}
	return windows
}
