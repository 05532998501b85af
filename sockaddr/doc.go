// File: sockaddr/doc.go
// Package sockaddr
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Generic socket addresses and their translation to and from the native
// sockaddr_in / sockaddr_in6 byte layouts of Linux and Windows. Encoding
// produces an exactly-sized buffer; decoding validates the length reported by
// the OS against the structure its family tag selects and never truncates.

package sockaddr
