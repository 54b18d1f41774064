//go:build windows

package process_windows

import (
	"os"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"

	"goproc/process"
)

func TestAttachSelf(t *testing.T) {
	p := New()
	defer p.Detach()

	require.NoError(t, p.Attach(process.ProcessID(os.Getpid()), DefaultAccess))
	assert.Equal(t, StateAttached, p.State())
	assert.True(t, p.Valid())
	assert.Equal(t, process.ProcessID(os.Getpid()), p.Pid())
}

func TestDetachIdempotent(t *testing.T) {
	p := New()

	// Detaching a never-attached orchestrator is a no-op.
	p.Detach()
	p.Detach()
	assert.Equal(t, StateDetached, p.State())

	require.NoError(t, p.Attach(process.ProcessID(os.Getpid()), DefaultAccess))
	p.Detach()
	assert.Equal(t, StateDetached, p.State())
	assert.False(t, p.Valid())
	assert.Equal(t, process.ProcessID(0), p.Pid())
	p.Detach()
}

func TestDetachedErrors(t *testing.T) {
	p := New()

	_, err := p.Memory().Read(0x1000, 16)
	assert.ErrorIs(t, err, process.ErrNotAttached)

	_, err = p.Remote().ExecuteDirect(0x1000, 0)
	assert.ErrorIs(t, err, process.ErrEnvironmentNotReady)

	assert.ErrorIs(t, p.Terminate(0), process.ErrNotAttached)
}

func TestMemoryReadSelf(t *testing.T) {
	p := New()
	defer p.Detach()
	require.NoError(t, p.Attach(process.ProcessID(os.Getpid()), DefaultAccess))

	data := []byte("remote memory round trip")
	addr := process.Address(uintptr(unsafe.Pointer(&data[0])))

	got, err := p.Memory().Read(addr, uint(len(data)))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	runtime.KeepAlive(data)
}

func TestModulesResolveSelf(t *testing.T) {
	p := New()
	defer p.Detach()
	require.NoError(t, p.Attach(process.ProcessID(os.Getpid()), DefaultAccess))

	base := p.Modules().Resolve("ntdll.dll", process.SearchDefault)
	require.NotZero(t, base)

	export := p.Modules().GetExport(base, "NtYieldExecution")
	assert.NotZero(t, export)
	assert.Greater(t, uint64(export), uint64(base))

	assert.Zero(t, p.Modules().GetExport(base, "NoSuchExportAnywhere"))
}

func TestThreadsSelf(t *testing.T) {
	p := New()
	defer p.Detach()
	require.NoError(t, p.Attach(process.ProcessID(os.Getpid()), DefaultAccess))

	tids, err := p.Threads().ThreadIDs()
	require.NoError(t, err)
	assert.Contains(t, tids, process.ThreadID(windows.GetCurrentThreadId()))
}

func TestEnsureInitSelf(t *testing.T) {
	p := New()
	defer p.Detach()
	require.NoError(t, p.Attach(process.ProcessID(os.Getpid()), DefaultAccess))

	// NtYieldExecution returns STATUS_SUCCESS or STATUS_NO_YIELD_PERFORMED,
	// either way EnsureInit must not fail against a fully initialized target.
	require.NoError(t, p.EnsureInit())
}

type orderedResettable struct {
	name  string
	order *[]string
}

func (o *orderedResettable) Reset() { *o.order = append(*o.order, o.name) }

type fakeExecutor struct {
	orderedResettable
}

func (f *fakeExecutor) CreateEnvironment(useHooks, contextSwitch bool) error { return nil }
func (f *fakeExecutor) ExecuteDirect(addr process.Address, arg uintptr) (uint64, error) {
	return 0, nil
}

// Remote resets before the mapper, the mapper before the hook engine.
func TestDetachResetOrder(t *testing.T) {
	var order []string
	p := New(
		WithRemoteExecutor(&fakeExecutor{orderedResettable{"remote", &order}}),
		WithManualMapper(&orderedResettable{"mapper", &order}),
		WithHookEngine(&orderedResettable{"hooks", &order}),
	)

	p.Detach()
	assert.Equal(t, []string{"remote", "mapper", "hooks"}, order)
}

func TestCreateAndAttachSuspended(t *testing.T) {
	path := os.Getenv("ComSpec")
	if path == "" {
		path = `C:\Windows\System32\cmd.exe`
	}

	p := New()
	defer p.Detach()

	require.NoError(t, p.CreateAndAttach(path, CreateOptions{Suspended: true}))
	assert.Equal(t, StateAttached, p.State())
	assert.True(t, p.Valid())

	require.NoError(t, p.Terminate(0))
	p.Detach()
	assert.False(t, p.Valid())
}

func TestCreateAndAttachForceInit(t *testing.T) {
	path := os.Getenv("ComSpec")
	if path == "" {
		path = `C:\Windows\System32\cmd.exe`
	}

	p := New()
	defer p.Detach()

	require.NoError(t, p.CreateAndAttach(path, CreateOptions{Suspended: true, ForceInit: true}))
	assert.True(t, p.Valid())
	assert.NotZero(t, p.Loader().(*LoaderProbe).PEB())

	// Forced init runs on its own execution vector; the primary thread must
	// never have been resumed. ResumeThread reports the previous suspend
	// count, which is still at least the CREATE_SUSPENDED one.
	found, err := EnumProcesses(p.Pid(), "", true)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.NotEmpty(t, found[0].Threads)

	var primary process.ThreadID
	for _, thd := range found[0].Threads {
		if thd.MainThread {
			primary = thd.TID
		}
	}
	require.NotZero(t, primary)

	thread, err := windows.OpenThread(THREAD_SUSPEND_RESUME, false, uint32(primary))
	require.NoError(t, err)
	prev, err := windows.ResumeThread(thread)
	require.NoError(t, err)
	windows.CloseHandle(thread)
	assert.GreaterOrEqual(t, prev, uint32(1), "primary thread was resumed during forced init")

	require.NoError(t, p.Terminate(0))
}

func TestEnsureInitDetached(t *testing.T) {
	p := New()
	assert.ErrorIs(t, p.EnsureInit(), process.ErrNotAttached)
}

type fakeModuleStore struct{ base process.Address }

func (f *fakeModuleStore) Resolve(name string, policy process.SearchPolicy) process.Address {
	return f.base
}
func (f *fakeModuleStore) GetExport(base process.Address, name string) process.Address { return 0 }
func (f *fakeModuleStore) Reset()                                                      {}

func TestEnsureInitExportNotFound(t *testing.T) {
	p := New(WithModuleStore(&fakeModuleStore{}))
	defer p.Detach()
	require.NoError(t, p.Attach(process.ProcessID(os.Getpid()), DefaultAccess))

	// Loader module not resolvable at all.
	assert.ErrorIs(t, p.EnsureInit(), process.ErrExportNotFound)

	// Module resolves but the export does not.
	p.modules = &fakeModuleStore{base: 0x7ff800000000}
	assert.ErrorIs(t, p.EnsureInit(), process.ErrExportNotFound)
}

func TestCreateAndAttachBadPath(t *testing.T) {
	p := New()

	err := p.CreateAndAttach(`C:\definitely\not\here.exe`, CreateOptions{})
	require.Error(t, err)
	assert.Equal(t, StateDetached, p.State())
	assert.False(t, p.Valid())
}
