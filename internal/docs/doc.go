// Package docs reads item documentation the way rustdoc renders it.
//
// Collect strips comment decoration (`///`, `//!`, `/** */`, leading '*')
// and keeps breakpoints so any offset of the stripped text maps back to the
// source byte it came from. Events turns the text into a flat markup stream
// and Check walks it for the Security heading and unbalanced backticks.
package docs
