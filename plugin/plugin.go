//////////////////////////////////////////////////////////////////////////////
//
// Plugin factories and the services they are given
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package plugin

import (
	errors "golang.org/x/xerrors"
)

// Interface type names.
const (
	InterfaceNode = "Spa:Pointer:Interface:Node"
	InterfaceLog  = "Spa:Pointer:Interface:Log"
	InterfaceCPU  = "Spa:Pointer:Interface:CPU"
	InterfaceLoop = "Spa:Pointer:Interface:DataLoop"
)

var (
	ErrUnknownInterface = errors.New("unknown interface")
	ErrInvalidHandle    = errors.New("invalid handle")
)

// InterfaceInfo names an interface implemented by a factory's instances.
type InterfaceInfo struct {
	Type string
}

// Handle is a plugin instance.
type Handle interface {
	// Interface returns the implementation of the named interface.
	Interface(typ string) (interface{}, error)

	// Clear releases the instance. It drops references to buffers and I/O
	// areas but never frees memory it did not allocate.
	Clear() error
}

// Factory creates plugin instances.
type Factory interface {
	Name() string
	Info() map[string]string

	// InstanceSize reports the memory an instance occupies before any
	// buffers are attached.
	InstanceSize(info map[string]string) uintptr

	// Init creates an instance configured by info, using the services in
	// support. Missing services are replaced by no-op defaults.
	Init(info map[string]string, support *Support) (Handle, error)

	// EnumInterfaceInfo returns the interface at *index and advances it.
	EnumInterfaceInfo(index *uint32) (InterfaceInfo, error)
}
