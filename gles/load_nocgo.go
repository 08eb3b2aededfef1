//go:build !cgo

package gles

import "errors"

// Load fails without cgo: there is no GL binding to resolve.
func Load() (Functions, error) {
	return nil, errors.New("gles: GL bindings require cgo")
}
