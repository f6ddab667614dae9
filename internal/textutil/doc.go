// Package textutil sanitizes untrusted strings (URL slugs, chapter numbers)
// into safe single path segments.
package textutil
