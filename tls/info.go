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

package tls

import "crypto/tls"

// Info carries the TLS configuration of both ends of a peer connection.
// Every environment dials and accepts, so it needs both halves.
//
// ServerConfig and ClientConfig should trust the same root CA. When
// ServerConfig requires client certificates (mutual TLS), ClientConfig must
// present one signed by that CA.
type Info struct {
	// ClientConfig is used when this environment dials a peer
	ClientConfig *tls.Config

	// ServerConfig is used when a peer dials this environment
	ServerConfig *tls.Config
}

// Enabled reports whether both halves are configured
func (x *Info) Enabled() bool {
	return x != nil && x.ClientConfig != nil && x.ServerConfig != nil
}
