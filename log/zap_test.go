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
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZap(t *testing.T) {
	t.Run("With Debug level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(DebugLevel, buffer)
		require.Equal(t, DebugLevel, logger.LogLevel())

		logger.Debug("test debug")
		require.NoError(t, logger.Flush())

		msg, lvl := decodeEntry(t, buffer.Bytes())
		assert.Equal(t, "test debug", msg)
		assert.Equal(t, DebugLevel.String(), lvl)
	})
	t.Run("With Info level drops debug entries", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)

		logger.Debug("not emitted")
		assert.Zero(t, buffer.Len())

		logger.Infof("hello %s", "world")
		msg, lvl := decodeEntry(t, buffer.Bytes())
		assert.Equal(t, "hello world", msg)
		assert.Equal(t, InfoLevel.String(), lvl)
		assert.True(t, logger.Enabled(ErrorLevel))
		assert.False(t, logger.Enabled(DebugLevel))
	})
	t.Run("With Warn level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(WarningLevel, buffer)
		logger.Warn("careful")
		msg, lvl := decodeEntry(t, buffer.Bytes())
		assert.Equal(t, "careful", msg)
		assert.Equal(t, WarningLevel.String(), lvl)
	})
	t.Run("With Error level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(ErrorLevel, buffer)
		logger.Errorf("failed: %v", errors.New("boom"))
		msg, lvl := decodeEntry(t, buffer.Bytes())
		assert.Equal(t, "failed: boom", msg)
		assert.Equal(t, ErrorLevel.String(), lvl)
	})
	t.Run("With Panic level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(PanicLevel, buffer)
		assert.Panics(t, func() { logger.Panic("oops") })
		assert.Panics(t, func() { logger.Panicf("oops %d", 1) })
	})
	t.Run("With structured fields", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("actor", "ping", "port", 9000, 42, "skipped", "orphan").Info("started")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
		assert.Equal(t, "ping", entry["actor"])
		assert.EqualValues(t, 9000, entry["port"])
		assert.Equal(t, "orphan", entry["_"])
	})
	t.Run("With no fields returns the same logger", func(t *testing.T) {
		logger := NewZap(InfoLevel, new(bytes.Buffer))
		assert.Same(t, logger, logger.With())
		assert.Same(t, logger, logger.With(1, 2))
	})
	t.Run("With file output is buffered until Flush", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.log")
		file, err := os.Create(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = file.Close() })

		logger := NewZap(InfoLevel, file)
		logger.Info("buffered")
		require.NoError(t, logger.Flush())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		msg, _ := decodeEntry(t, content)
		assert.Equal(t, "buffered", msg)
	})
	t.Run("With outputs and std logger", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		require.Len(t, logger.LogOutput(), 1)
		require.NotNil(t, logger.StdLogger())
	})
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger
	logger.Debug("x")
	logger.Infof("x %d", 1)
	logger.Warn("x")
	logger.Error("x")
	assert.Equal(t, InfoLevel, logger.LogLevel())
	assert.Equal(t, DiscardLogger, logger.With("k", "v"))
	assert.False(t, logger.Enabled(InfoLevel))
	assert.True(t, logger.Enabled(PanicLevel))
	assert.NoError(t, logger.Flush())
	assert.NotNil(t, logger.StdLogger())
	assert.Panics(t, func() { logger.Panicf("boom %d", 1) })
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", InfoLevel.String())
	assert.Equal(t, "debug", DebugLevel.String())
	assert.Equal(t, "invalid", InvalidLevel.String())
}

func decodeEntry(t *testing.T, raw []byte) (string, string) {
	t.Helper()
	var entry struct {
		Level string `json:"level"`
		Msg   string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(raw), &entry))
	return entry.Msg, entry.Level
}
