package compat

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/lixenwraith/dailylog"
	"github.com/rs/zerolog"
)

// ZerologWriter is a zerolog.LevelWriter that enqueues zerolog events into a
// pipeline. The JSON event is unpacked into message and key value pairs.
type ZerologWriter struct {
	producer *dailylog.Producer
}

// NewZerologWriter creates a writer with its own producer lane named "zerolog"
func NewZerologWriter(p *dailylog.Pipeline) *ZerologWriter {
	return &ZerologWriter{producer: p.NewProducer("zerolog")}
}

func zerologLevel(l zerolog.Level) int64 {
	switch l {
	case zerolog.TraceLevel:
		return dailylog.LevelTrace
	case zerolog.DebugLevel:
		return dailylog.LevelDebug
	case zerolog.WarnLevel:
		return dailylog.LevelWarn
	case zerolog.ErrorLevel:
		return dailylog.LevelError
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return dailylog.LevelCritical
	default:
		return dailylog.LevelInfo
	}
}

// Write logs p at info level
func (w *ZerologWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter
func (w *ZerologWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if err := w.producer.Log(zerologLevel(l), eventArgs(p)...); err != nil {
		return 0, err
	}
	return len(p), nil
}

// eventArgs turns a zerolog JSON event into log arguments. Lines that are
// not JSON objects are logged as they are.
func eventArgs(p []byte) []any {
	line := bytes.TrimRight(p, "\n")

	var event map[string]any
	if err := json.Unmarshal(line, &event); err != nil {
		return []any{string(line)}
	}

	args := make([]any, 0, 1+2*len(event))
	if msg, ok := event[zerolog.MessageFieldName]; ok {
		args = append(args, msg)
	}

	keys := make([]string, 0, len(event))
	for k := range event {
		switch k {
		case zerolog.MessageFieldName, zerolog.LevelFieldName, zerolog.TimestampFieldName:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, k, event[k])
	}
	return args
}

var _ zerolog.LevelWriter = (*ZerologWriter)(nil)
