package strata

import "errors"

// Error kinds. Functions wrap these with context; test with errors.Is.
var (
	// Programmer errors.
	ErrDuplicateName      = errors.New("strata: duplicate name")
	ErrNodeNotFound       = errors.New("strata: node not found")
	ErrRootNode           = errors.New("strata: operation not permitted on root node")
	ErrNilResource        = errors.New("strata: nil resource")
	ErrPriorityOutOfRange = errors.New("strata: priority out of range")
	ErrComponentAttached  = errors.New("strata: component already attached")

	// Resource-creation failures.
	ErrFramebufferIncomplete = errors.New("strata: framebuffer incomplete")
	ErrShaderCompile         = errors.New("strata: shader compile failed")
	ErrShaderLink            = errors.New("strata: shader link failed")
	ErrTextureLoad           = errors.New("strata: texture load failed")
	ErrBufferCreate          = errors.New("strata: buffer creation failed")

	// ErrDeviceError reports a driver error found by Device.CheckError.
	ErrDeviceError = errors.New("strata: device error")
)
