package audio

// Provider is the minimal interface a frontend needs to pull samples.
type Provider interface {
	GetSamples(count int) []int16
}

var _ Provider = (*APU)(nil)
