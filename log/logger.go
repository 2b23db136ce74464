package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int8

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Warning
	Error
)

// The shared level, adjusted at runtime by SetLevel.
var level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

// The output sink shared by every named logger.
var output = &sink{w: os.Stdout}

// The root logger that New derives named loggers from.
var root *zap.Logger

// sink serializes writes and allows the destination to be swapped after
// loggers have been created.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *sink) Sync() error {
	return nil
}

func (s *sink) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

// Create a new named logger.
func New(name string) *zap.Logger {
	return root.Named(name)
}

// Override the backend output sink.
func SetSink(w io.Writer) {
	output.set(w)
}

// Set logger verbosity.
func SetLevel(l Level) {
	switch l {
	case Debug:
		level.SetLevel(zapcore.DebugLevel)
	case Info:
		level.SetLevel(zapcore.InfoLevel)
	case Warning:
		level.SetLevel(zapcore.WarnLevel)
	case Error:
		level.SetLevel(zapcore.ErrorLevel)
	}
}

func init() {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(output), level)
	root = zap.New(core)
}
