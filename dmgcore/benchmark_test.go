package dmgcore

import "testing"

func BenchmarkStepFrame(b *testing.B) {
	e := New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		e.StepFrame()
	}
}
