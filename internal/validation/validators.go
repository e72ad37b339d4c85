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
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type booleanValidator struct {
	ok      bool
	message string
}

// NewBooleanValidator fails with message when ok is false
func NewBooleanValidator(ok bool, message string) Validator {
	return booleanValidator{ok: ok, message: message}
}

func (v booleanValidator) Validate() error {
	if !v.ok {
		return errors.New(v.message)
	}
	return nil
}

type emptyStringValidator struct {
	field string
	value string
}

// NewEmptyStringValidator fails when value is blank
func NewEmptyStringValidator(field, value string) Validator {
	return emptyStringValidator{field: field, value: value}
}

func (v emptyStringValidator) Validate() error {
	if strings.TrimSpace(v.value) == "" {
		return fmt.Errorf("the [%s] is required", v.field)
	}
	return nil
}

type patternValidator struct {
	expr  *regexp.Regexp
	value string
	err   error
}

// NewPatternValidator fails with err when value does not match expr.
// A nil err falls back to a generic message.
func NewPatternValidator(expr *regexp.Regexp, value string, err error) Validator {
	return patternValidator{expr: expr, value: value, err: err}
}

func (v patternValidator) Validate() error {
	if v.expr.MatchString(v.value) {
		return nil
	}
	if v.err != nil {
		return v.err
	}
	return fmt.Errorf("%q does not match %s", v.value, v.expr.String())
}

type tcpAddressValidator struct {
	address string
}

// NewTCPAddressValidator checks a host:port pair
func NewTCPAddressValidator(address string) Validator {
	return tcpAddressValidator{address: address}
}

func (v tcpAddressValidator) Validate() error {
	host, port, err := net.SplitHostPort(strings.TrimSpace(v.address))
	if err != nil {
		return fmt.Errorf("invalid address=(%s): %w", v.address, err)
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid address=(%s): %w", v.address, err)
	}

	if host == "" || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid address=(%s)", v.address)
	}
	return nil
}

type positiveDurationValidator struct {
	field string
	value time.Duration
}

// NewPositiveDurationValidator fails when value is zero or negative
func NewPositiveDurationValidator(field string, value time.Duration) Validator {
	return positiveDurationValidator{field: field, value: value}
}

func (v positiveDurationValidator) Validate() error {
	if v.value <= 0 {
		return fmt.Errorf("the [%s] must be greater than zero", v.field)
	}
	return nil
}
