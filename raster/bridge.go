package raster

import "github.com/richinsley/gosharedgl/gles"

// Bridge creates the two rasterizer handles for a GL context.
type Bridge interface {
	// CreateInterface must be called with the GL context current.
	CreateInterface(gl gles.Functions) (*Interface, error)
	CreateContext(iface *Interface, textureTarget uint32) (*Context, error)
}

// NewBridge returns the default bridge.
func NewBridge() Bridge {
	return bridge{}
}

type bridge struct{}

func (bridge) CreateInterface(gl gles.Functions) (*Interface, error) {
	return NewInterface(gl)
}

func (bridge) CreateContext(iface *Interface, textureTarget uint32) (*Context, error) {
	return NewContext(iface, textureTarget)
}
