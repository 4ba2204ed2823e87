package audio

// ToMono averages the channels of frames into out, which must be at least as
// long as frames. It returns the number of samples written.
func ToMono(frames [][2]float64, out []float32) int {
	n := min(len(frames), len(out))
	for i := range frames[:n] {
		out[i] = float32((frames[i][0] + frames[i][1]) * 0.5)
	}
	return n
}

// ToStereo copies mono samples onto both channels of frames and returns the
// number of frames written.
func ToStereo(mono []float32, frames [][2]float64) int {
	n := min(len(mono), len(frames))
	for i, v := range mono[:n] {
		frames[i][0] = float64(v)
		frames[i][1] = float64(v)
	}
	return n
}
