// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package header

// ContentLength is the codec for the Content-Length header,
// defined in RFC 9110 section 8.6.
var ContentLength = NewUint64("Content-Length")
