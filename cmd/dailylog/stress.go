package main

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/dailylog"
	"github.com/lixenwraith/dailylog/compat"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var levels = []int64{
	dailylog.LevelDebug,
	dailylog.LevelInfo,
	dailylog.LevelWarn,
	dailylog.LevelError,
}

func generateRandomMessage(r *rand.Rand, size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[r.Intn(len(chars))])
	}
	return sb.String()
}

// emitter logs one record through the selected front end
type emitter func(level int64, msg string, worker, seq int) error

func nativeEmitter(lane *dailylog.Producer) emitter {
	return func(level int64, msg string, worker, seq int) error {
		return lane.Log(level, msg, "wkr", worker, "seq", seq)
	}
}

func zapEmitter(p *dailylog.Pipeline) emitter {
	zl := zap.New(compat.NewZapCore(p))
	return func(level int64, msg string, worker, seq int) error {
		fields := []zap.Field{zap.Int("wkr", worker), zap.Int("seq", seq)}
		switch level {
		case dailylog.LevelDebug:
			zl.Debug(msg, fields...)
		case dailylog.LevelWarn:
			zl.Warn(msg, fields...)
		case dailylog.LevelError:
			zl.Error(msg, fields...)
		default:
			zl.Info(msg, fields...)
		}
		return nil
	}
}

func zerologEmitter(p *dailylog.Pipeline) emitter {
	zl := zerolog.New(compat.NewZerologWriter(p))
	return func(level int64, msg string, worker, seq int) error {
		var ev *zerolog.Event
		switch level {
		case dailylog.LevelDebug:
			ev = zl.Debug()
		case dailylog.LevelWarn:
			ev = zl.Warn()
		case dailylog.LevelError:
			ev = zl.Error()
		default:
			ev = zl.Info()
		}
		ev.Int("wkr", worker).Int("seq", seq).Msg(msg)
		return nil
	}
}

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Flood the pipeline from concurrent producers",
	Long: `Run N producers that each log a fixed number of records with random
levels and sizes, then print throughput and drop statistics.

Use --set overflow_policy=drop_newest to see the drop counter at work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		producers, _ := cmd.Flags().GetInt("producers")
		records, _ := cmd.Flags().GetInt("records")
		maxSize, _ := cmd.Flags().GetInt("max-size")
		frontend, _ := cmd.Flags().GetString("frontend")
		if producers <= 0 || records <= 0 || maxSize <= 0 {
			return fmt.Errorf("producers, records and max-size must be positive")
		}

		// The console would dominate the measurement
		p, err := startPipeline(cmd, "enable_console=false", "name=stress")
		if err != nil {
			return err
		}

		var emit emitter
		switch frontend {
		case "native":
		case "zap":
			emit = zapEmitter(p)
		case "zerolog":
			emit = zerologEmitter(p)
		default:
			p.Shutdown()
			return fmt.Errorf("unknown frontend '%s' (use native, zap or zerolog)", frontend)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Stress test: %d producers x %d records via %s\n", producers, records, frontend)
		fmt.Fprintf(out, "Writing to %s\n", p.ActiveFile())

		var wg sync.WaitGroup
		var refused atomic.Int64
		start := time.Now()
		for w := 0; w < producers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(w)))
				e := emit
				if e == nil {
					// One ordering lane per native producer
					e = nativeEmitter(p.NewProducer(fmt.Sprintf("stress-%d", w)))
				}
				for i := 0; i < records; i++ {
					level := levels[r.Intn(len(levels))]
					if err := e(level, generateRandomMessage(r, r.Intn(maxSize)+10), w, i); err != nil {
						refused.Add(1)
					}
				}
			}(w)
		}
		wg.Wait()
		produced := time.Since(start)

		st := p.Stats()
		if err := p.Shutdown(); err != nil {
			fmt.Fprintf(out, "Shutdown reported: %v\n", err)
		}
		drained := time.Since(start)

		total := producers * records
		fmt.Fprintf(out, "Produced %d records in %v (%.0f/s)\n", total, produced.Round(time.Millisecond), float64(total)/produced.Seconds())
		fmt.Fprintf(out, "Drained in %v\n", drained.Round(time.Millisecond))
		fmt.Fprintf(out, "Enqueued %d, dropped %d, refused %d, sink errors %d\n", st.Enqueued, st.Dropped, refused.Load(), st.SinkErrors)
		return nil
	},
}

func init() {
	stressCmd.Flags().Int("producers", 16, "Concurrent producers")
	stressCmd.Flags().Int("records", 10000, "Records per producer")
	stressCmd.Flags().Int("max-size", 200, "Maximum random message size")
	stressCmd.Flags().String("frontend", "native", "Logging front end: native, zap or zerolog")
}
