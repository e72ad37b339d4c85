// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"io"
	golog "log"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// DefaultLogger emits InfoLevel and above to os.Stdout
	DefaultLogger = NewZap(InfoLevel, os.Stdout)

	// DebugLogger emits DebugLevel and above to os.Stdout
	DebugLogger = NewZap(DebugLevel, os.Stdout)

	// DiscardLogger drops everything
	DiscardLogger Logger = discardLogger{}
)

const (
	bufferedWriteSize     = 256 * 1024
	bufferedFlushInterval = 30 * time.Second
)

// Zap implements Logger on top of go.uber.org/zap.
//
// File outputs are buffered for entries below ErrorLevel; stdout, stderr and
// any other writer stay unbuffered. Call Flush during shutdown to drain them.
type Zap struct {
	logger   *zap.Logger
	sugar    *zap.SugaredLogger
	outputs  []io.Writer
	buffered *zapcore.BufferedWriteSyncer
}

var _ Logger = (*Zap)(nil)

// NewZap creates a Zap logger writing JSON entries at the given level.
func NewZap(level Level, writers ...io.Writer) *Zap {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}

	zapLevel := toZapLevel(level)
	encoder := zapcore.NewJSONEncoder(encoderConfig())

	var (
		cores    []zapcore.Core
		buffered *zapcore.BufferedWriteSyncer
		direct   []zapcore.WriteSyncer
		files    []zapcore.WriteSyncer
	)

	for _, writer := range writers {
		if file, ok := writer.(*os.File); ok && !isStdStream(file) {
			files = append(files, zapcore.AddSync(writer))
			continue
		}
		direct = append(direct, zapcore.AddSync(writer))
	}

	if len(direct) > 0 {
		cores = append(cores, zapcore.NewCore(encoder, zap.CombineWriteSyncers(direct...), zapLevel))
	}

	if len(files) > 0 {
		fileSyncer := zap.CombineWriteSyncers(files...)
		buffered = &zapcore.BufferedWriteSyncer{
			WS:            fileSyncer,
			Size:          bufferedWriteSize,
			FlushInterval: bufferedFlushInterval,
		}

		belowError := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapLevel && l < zapcore.ErrorLevel
		})

		atOrAboveError := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapLevel && l >= zapcore.ErrorLevel
		})

		cores = append(cores,
			zapcore.NewCore(encoder, buffered, belowError),
			zapcore.NewCore(encoder, fileSyncer, atOrAboveError))
	}

	logger := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel))

	return &Zap{
		logger:   logger,
		sugar:    logger.Sugar(),
		outputs:  writers,
		buffered: buffered,
	}
}

// Debug starts a message with debug level
func (z *Zap) Debug(v ...any) {
	z.sugar.Debug(v...)
}

// Debugf starts a message with debug level
func (z *Zap) Debugf(format string, v ...any) {
	z.sugar.Debugf(format, v...)
}

// Info starts a message with info level
func (z *Zap) Info(v ...any) {
	z.sugar.Info(v...)
}

// Infof starts a message with info level
func (z *Zap) Infof(format string, v ...any) {
	z.sugar.Infof(format, v...)
}

// Warn starts a message with warn level
func (z *Zap) Warn(v ...any) {
	z.sugar.Warn(v...)
}

// Warnf starts a message with warn level
func (z *Zap) Warnf(format string, v ...any) {
	z.sugar.Warnf(format, v...)
}

// Error starts a message with error level.
func (z *Zap) Error(v ...any) {
	z.sugar.Error(v...)
}

// Errorf starts a message with error level.
func (z *Zap) Errorf(format string, v ...any) {
	z.sugar.Errorf(format, v...)
}

// Fatal starts a new message with fatal level. The os.Exit(1) function
// is called which terminates the program immediately.
func (z *Zap) Fatal(v ...any) {
	z.sugar.Fatal(v...)
}

// Fatalf starts a new message with fatal level. The os.Exit(1) function
// is called which terminates the program immediately.
func (z *Zap) Fatalf(format string, v ...any) {
	z.sugar.Fatalf(format, v...)
}

// Panic starts a new message with panic level. The panic() function
// is called which stops the ordinary flow of a goroutine.
func (z *Zap) Panic(v ...any) {
	z.sugar.Panic(v...)
}

// Panicf starts a new message with panic level. The panic() function
// is called which stops the ordinary flow of a goroutine.
func (z *Zap) Panicf(format string, v ...any) {
	z.sugar.Panicf(format, v...)
}

// With returns a child logger carrying the given key/value pairs.
// An odd trailing value is recorded under the "_" key.
func (z *Zap) With(keyValues ...any) Logger {
	fields := make([]zap.Field, 0, (len(keyValues)+1)/2)
	for i := 0; i < len(keyValues); i += 2 {
		if i+1 == len(keyValues) {
			fields = append(fields, zap.Any("_", keyValues[i]))
			break
		}

		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, toField(key, keyValues[i+1]))
	}

	if len(fields) == 0 {
		return z
	}

	child := z.logger.With(fields...)
	return &Zap{
		logger:   child,
		sugar:    child.Sugar(),
		outputs:  z.outputs,
		buffered: z.buffered,
	}
}

// Enabled reports whether the given level is emitted
func (z *Zap) Enabled(level Level) bool {
	return z.logger.Core().Enabled(toZapLevel(level))
}

// LogLevel returns the log level that is used
func (z *Zap) LogLevel() Level {
	return fromZapLevel(z.logger.Level())
}

// LogOutput returns the log output that is set
func (z *Zap) LogOutput() []io.Writer {
	return z.outputs
}

// StdLogger returns the standard logger associated to the logger
func (z *Zap) StdLogger() *golog.Logger {
	stdLogger, _ := zap.NewStdLogAt(z.logger, z.logger.Level())
	return stdLogger
}

// Flush drains the buffered file outputs and syncs the files.
func (z *Zap) Flush() error {
	var err error
	if z.buffered != nil {
		err = multierr.Append(err, z.buffered.Sync())
	}

	for _, output := range z.outputs {
		file, ok := output.(*os.File)
		if !ok || isStdStream(file) {
			continue
		}
		err = multierr.Append(err, file.Sync())
	}
	return err
}

func toField(key string, val any) zap.Field {
	switch v := val.(type) {
	case string:
		return zap.String(key, v)
	case int:
		return zap.Int(key, v)
	case int64:
		return zap.Int64(key, v)
	case uint64:
		return zap.Uint64(key, v)
	case bool:
		return zap.Bool(key, v)
	case error:
		return zap.NamedError(key, v)
	case time.Duration:
		return zap.Duration(key, v)
	case interface{ String() string }:
		return zap.Stringer(key, v)
	default:
		return zap.Any(key, val)
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("2006-01-02T15:04:05.000000Z0700"))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func isStdStream(file *os.File) bool {
	return file == os.Stdout || file == os.Stderr
}
