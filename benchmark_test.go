package dailylog

import (
	"io"
	"testing"
)

// BenchmarkPipelineInfo benchmarks the producer path into the file sink
func BenchmarkPipelineInfo(b *testing.B) {
	p, _, _ := createTestPipeline(b)
	defer p.Shutdown()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Info("benchmark message", i)
	}
}

// BenchmarkPipelineInfoParallel benchmarks many producers sharing the queue
func BenchmarkPipelineInfoParallel(b *testing.B) {
	p, _, _ := createTestPipeline(b)
	defer p.Shutdown()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		prod := p.NewProducer("bench")
		i := 0
		for pb.Next() {
			prod.Info("parallel message", i)
			i++
		}
	})
}

// BenchmarkPipelineFiltered benchmarks records below the pipeline level
func BenchmarkPipelineFiltered(b *testing.B) {
	p, _, _ := createTestPipeline(b)
	defer p.Shutdown()
	p.SetLevel(LevelError)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Debug("dropped early", i)
	}
}

// BenchmarkConsoleRender benchmarks the colorizing console path
func BenchmarkConsoleRender(b *testing.B) {
	s := NewConsoleSink(io.Discard, LevelTrace, nil)
	rec := NewRecord(LevelWarn, 1, "render me", 42)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Write(s.Render(rec))
	}
}
