package retry

import "testing"

// BenchmarkBackoff_Delay measures the cost of computing one delay.
func BenchmarkBackoff_Delay(b *testing.B) {
	bo := AcceptBackoff()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bo.Delay(i%12 + 1)
	}
}
