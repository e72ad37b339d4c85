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

package validation

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestChain(t *testing.T) {
	t.Run("With fail fast", func(t *testing.T) {
		err := New(FailFast()).
			AddAssertion(false, "first").
			AddAssertion(false, "second").
			Validate()
		require.Error(t, err)
		assert.EqualError(t, err, "first")
	})
	t.Run("With all errors", func(t *testing.T) {
		err := New(AllErrors()).
			AddAssertion(false, "first").
			AddAssertion(true, "skipped").
			AddValidator(NewEmptyStringValidator("name", " ")).
			Validate()
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 2)
	})
	t.Run("With no violation", func(t *testing.T) {
		err := New().
			AddValidator(NewTCPAddressValidator("127.0.0.1:9000")).
			AddValidator(NewPositiveDurationValidator("timeout", time.Second)).
			Validate()
		assert.NoError(t, err)
	})
}

func TestTCPAddressValidator(t *testing.T) {
	assert.NoError(t, NewTCPAddressValidator("localhost:0").Validate())
	assert.Error(t, NewTCPAddressValidator("127.0.0.1").Validate())
	assert.Error(t, NewTCPAddressValidator(":9000").Validate())
	assert.Error(t, NewTCPAddressValidator("127.0.0.1:70000").Validate())
	assert.Error(t, NewTCPAddressValidator("127.0.0.1:abc").Validate())
}

func TestPatternValidator(t *testing.T) {
	expr := regexp.MustCompile(`^[a-z]+$`)
	custom := errors.New("lowercase only")
	assert.NoError(t, NewPatternValidator(expr, "abc", custom).Validate())
	assert.ErrorIs(t, NewPatternValidator(expr, "ABC", custom).Validate(), custom)
	assert.Error(t, NewPatternValidator(expr, "ABC", nil).Validate())
}

func TestPositiveDurationValidator(t *testing.T) {
	assert.Error(t, NewPositiveDurationValidator("interval", 0).Validate())
	assert.Error(t, NewPositiveDurationValidator("interval", -time.Second).Validate())
}
