package graphics

import (
	"errors"
	"fmt"
)

// Kind classifies why a construction step failed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfigurationUnavailable: no matching pixel/surface configuration,
	// or the platform is not built into this binary.
	KindConfigurationUnavailable
	// KindNativeContextCreationFailed: the platform context primitive
	// returned a null handle.
	KindNativeContextCreationFailed
	// KindRasterizerInterfaceUnavailable: the rasterizer could not create
	// its GPU interface or render context.
	KindRasterizerInterfaceUnavailable
	// KindFramebufferIncomplete: GL error or incomplete status during
	// framebuffer setup.
	KindFramebufferIncomplete
	// KindSurfaceBindingFailed: the shareable surface could not be bound
	// or exported.
	KindSurfaceBindingFailed
	// KindInvalidSize: a requested size was not positive.
	KindInvalidSize
)

func (k Kind) String() string {
	switch k {
	case KindConfigurationUnavailable:
		return "configuration unavailable"
	case KindNativeContextCreationFailed:
		return "native context creation failed"
	case KindRasterizerInterfaceUnavailable:
		return "rasterizer interface unavailable"
	case KindFramebufferIncomplete:
		return "framebuffer incomplete"
	case KindSurfaceBindingFailed:
		return "surface binding failed"
	case KindInvalidSize:
		return "invalid size"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Any *Error with the same Kind matches.
var (
	ErrConfigurationUnavailable       = &Error{Kind: KindConfigurationUnavailable}
	ErrNativeContextCreationFailed    = &Error{Kind: KindNativeContextCreationFailed}
	ErrRasterizerInterfaceUnavailable = &Error{Kind: KindRasterizerInterfaceUnavailable}
	ErrFramebufferIncomplete          = &Error{Kind: KindFramebufferIncomplete}
	ErrSurfaceBindingFailed           = &Error{Kind: KindSurfaceBindingFailed}
	ErrInvalidSize                    = &Error{Kind: KindInvalidSize}
)

// Error is returned by every constructor in this module.
type Error struct {
	// Op is the operation that failed, e.g. "glcontext.New".
	Op   string
	Kind Kind
	Err  error
}

// Errorf builds an *Error whose cause is formatted like fmt.Errorf.
func Errorf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	// An inner error of the same kind already names it.
	if inner, ok := e.Err.(*Error); ok && inner.Kind == e.Kind {
		if e.Op == "" {
			return inner.Error()
		}
		return fmt.Sprintf("%s: %v", e.Op, inner)
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so that sentinels compare equal to any error of the
// same class.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
