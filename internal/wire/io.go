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

package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	gerrors "github.com/tochemey/netactor/errors"
)

// HeaderSize is the size of the length prefix
const HeaderSize = 4

// Marshal returns the length prefixed encoding of f. maxSize bounds the body;
// zero or less means unbounded.
func Marshal(f *Frame, maxSize int) ([]byte, error) {
	size := f.Size()
	if maxSize > 0 && size > maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", gerrors.ErrFrameTooLarge, size, maxSize)
	}

	out := make([]byte, HeaderSize, HeaderSize+size)
	binary.BigEndian.PutUint32(out, uint32(size))
	return f.Encode(out), nil
}

// WriteFrame writes the length prefixed encoding of f to w
func WriteFrame(w io.Writer, f *Frame, maxSize int) error {
	data, err := Marshal(f, maxSize)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadFrame reads one length prefixed frame from r. A length above maxSize
// fails with ErrFrameTooLarge without reading the body; the stream is then
// out of sync and must be dropped.
func ReadFrame(r io.Reader, maxSize int) (*Frame, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	size := int(binary.BigEndian.Uint32(header[:]))
	if maxSize > 0 && size > maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", gerrors.ErrFrameTooLarge, size, maxSize)
	}

	body := buffers.get(size)
	defer buffers.put(body)
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return Decode(body)
}
