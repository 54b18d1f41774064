package process

import "fmt"

// ProcessID represents a unique identifier for a process
type ProcessID uint32

// ThreadID represents a unique identifier for a thread
type ThreadID uint32

// Address represents a memory address within a process
type Address uint64

func (a Address) ToString() string {
	return fmt.Sprintf("0x%X", uint64(a))
}

// ThreadInfo contains information about one thread of an enumerated process.
// MainThread is derived during enumeration (earliest kernel creation time);
// exactly one thread per process carries it.
type ThreadInfo struct {
	TID          ThreadID
	StartAddress Address
	MainThread   bool
}

// ProcessInfo contains information about an enumerated process.
// Populated in a single snapshot pass and immutable afterward.
type ProcessInfo struct {
	PID       ProcessID
	ImageName string
	Threads   []ThreadInfo
}

// Less orders ProcessInfo by PID for deterministic enumeration results.
func (p ProcessInfo) Less(other ProcessInfo) bool {
	return p.PID < other.PID
}
