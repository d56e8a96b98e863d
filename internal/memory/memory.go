// Package memory defines the uniform 16-bit address-space contract that
// every addressable Game Boy component obeys, and a thin bus dispatcher
// used to wire components together for testing. The CPU, the real MMU/interrupt-dispatch loop, and ROM file
// loading are external collaborators and are not implemented here.
package memory

import "errors"

// Memory is the capability every addressable component exposes: a
// uniform 16-bit read/write contract. The bus dispatches by address
// range and delegates to whichever component owns that range.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// ErrBadAddress indicates a read or write to an address not owned by
// any component wired into the bus. Raised by the bus, never by the
// PPU, APU, or cartridge themselves.
var ErrBadAddress = errors.New("memory: address not owned by any component")
