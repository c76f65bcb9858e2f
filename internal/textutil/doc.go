// Package textutil provides token sanitization for scratch artifact names
// derived from user-supplied tier names.
package textutil
