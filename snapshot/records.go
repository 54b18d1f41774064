// Package snapshot parses the variable-length process records returned by the
// NtQuerySystemInformation SystemExtendedProcessInformation class. The parser
// only touches raw bytes, so it is portable and testable against synthetic
// buffers; the query itself lives in process_windows.
package snapshot

import "unsafe"

// SystemExtendedProcessInformation is the undocumented information class the
// enumerator queries. Each record carries per-thread sub-records with start
// addresses, which the documented class omits.
const SystemExtendedProcessInformation = 57

type unicodeString struct {
	Length        uint16
	MaximumLength uint16
	Buffer        *uint16
}

type clientID struct {
	UniqueProcess uintptr
	UniqueThread  uintptr
}

// systemThreadInformation mirrors SYSTEM_THREAD_INFORMATION.
type systemThreadInformation struct {
	KernelTime      int64
	UserTime        int64
	CreateTime      int64
	WaitTime        uint32
	StartAddress    uintptr
	ClientID        clientID
	Priority        int32
	BasePriority    int32
	ContextSwitches uint32
	ThreadState     uint32
	WaitReason      uint32
}

// systemExtendedThreadInformation mirrors SYSTEM_EXTENDED_THREAD_INFORMATION,
// the per-thread record layout of information class 57.
type systemExtendedThreadInformation struct {
	ThreadInfo        systemThreadInformation
	StackBase         uintptr
	StackLimit        uintptr
	Win32StartAddress uintptr
	TebBase           uintptr
	Reserved2         uintptr
	Reserved3         uintptr
	Reserved4         uintptr
}

// systemProcessInformation mirrors the fixed header of
// SYSTEM_PROCESS_INFORMATION. The thread array follows it inline;
// NextEntryOffset chains records, zero terminates the chain.
type systemProcessInformation struct {
	NextEntryOffset              uint32
	NumberOfThreads              uint32
	WorkingSetPrivateSize        int64
	HardFaultCount               uint32
	NumberOfThreadsHighWatermark uint32
	CycleTime                    uint64
	CreateTime                   int64
	UserTime                     int64
	KernelTime                   int64
	ImageName                    unicodeString
	BasePriority                 int32
	UniqueProcessID              uintptr
	InheritedFromUniqueProcessID uintptr
	HandleCount                  uint32
	SessionID                    uint32
	UniqueProcessKey             uintptr
	PeakVirtualSize              uintptr
	VirtualSize                  uintptr
	PageFaultCount               uint32
	PeakWorkingSetSize           uintptr
	WorkingSetSize               uintptr
	QuotaPeakPagedPoolUsage      uintptr
	QuotaPagedPoolUsage          uintptr
	QuotaPeakNonPagedPoolUsage   uintptr
	QuotaNonPagedPoolUsage       uintptr
	PagefileUsage                uintptr
	PeakPagefileUsage            uintptr
	PrivatePageCount             uintptr
	ReadOperationCount           int64
	WriteOperationCount          int64
	OtherOperationCount          int64
	ReadTransferCount            int64
	WriteTransferCount           int64
	OtherTransferCount           int64
}

const (
	processRecordSize = int(unsafe.Sizeof(systemProcessInformation{}))
	threadRecordSize  = int(unsafe.Sizeof(systemExtendedThreadInformation{}))
)
