package process

// Resettable is implemented by every subsystem owned by a process instance.
// Reset releases the subsystem's resources; it must not fail and must not
// require the process handle to still be valid, because it is called during
// teardown after the target may already be gone.
type Resettable interface {
	Reset()
}

// RemoteExecutor invokes functions inside the attached process.
type RemoteExecutor interface {
	Resettable

	// CreateEnvironment prepares the remote execution environment.
	// useHooks enables return-value interception hooks, contextSwitch routes
	// calls through an existing thread instead of a new one.
	CreateEnvironment(useHooks, contextSwitch bool) error

	// ExecuteDirect invokes the function at addr in the target process with a
	// single argument and blocks until it completes, returning its result.
	ExecuteDirect(addr Address, arg uintptr) (uint64, error)
}

// SearchPolicy selects how a module lookup treats loader metadata.
type SearchPolicy int

const (
	// SearchDefault trusts the loader module list.
	SearchDefault SearchPolicy = iota

	// SearchSections walks mapped sections as well, finding modules that were
	// unlinked from the loader list.
	SearchSections
)

// ModuleStore resolves modules and their exports in the attached process.
type ModuleStore interface {
	Resettable

	// Resolve finds the named module in the target process and returns its
	// base address, or 0 if the module is not loaded.
	Resolve(name string, policy SearchPolicy) Address

	// GetExport resolves the address of a named export of a module previously
	// returned by Resolve. A zero address means the export does not exist.
	GetExport(base Address, name string) Address
}

// NativeLoader probes the target's loader structures.
type NativeLoader interface {
	Resettable

	// Init locates the loader state of the attached process. Called once per
	// attach, before any remote operation.
	Init() error
}

// ThreadTable enumerates and tracks threads of the attached process.
type ThreadTable interface {
	Resettable

	// ThreadIDs returns the IDs of all live threads of the attached process.
	ThreadIDs() ([]ThreadID, error)
}

// MemoryAccess reads and writes the attached process's address space.
type MemoryAccess interface {
	Resettable

	Read(addr Address, size uint) ([]byte, error)
	Write(addr Address, data []byte) error
}
