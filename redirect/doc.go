// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package redirect provides an HTTP service for redirecting one path to
// another path or URL.
//
// Redirects are either absolute or relative. An absolute target is used
// as-is for the Location header. A relative target is appended to the
// request path once the rule's source path has been stripped from its end,
// which keeps any prefix the rule was mounted under:
//
//	one := redirect.From("/one", redirect.ToRelative("/two"))
//
//	sub := mux.NewHttp()
//	redirect.Register(sub, one)
//
//	root := mux.NewHttp()
//	root.Mount("/", sub)       // "/one"        -> "/two"
//	root.Mount("/scoped", sub) // "/scoped/one" -> "/scoped/two"
//
// By default the "308 Permanent Redirect" status is used. [Temporary]
// switches to "307 Temporary Redirect", which, like 308, preserves the
// request method and body unlike 301 and 302.
package redirect
