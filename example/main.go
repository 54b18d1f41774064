//go:build windows

package main

import (
	"flag"
	"fmt"
	"os"

	"goproc/hexdump"
	"goproc/process"
	"goproc/process_windows"
)

// Attaches to a running process (or spawns one suspended), locates its PEB
// and hexdumps the first bytes of it.
func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to")
	spawnFlag := flag.String("spawn", "", "Executable to create suspended instead of attaching")
	sizeFlag := flag.Uint("size", 64, "Number of PEB bytes to dump")
	flag.Parse()

	if *pidFlag == 0 && *spawnFlag == "" {
		fmt.Println("Error: --pid or --spawn is required")
		flag.Usage()
		os.Exit(1)
	}

	proc := process_windows.New()
	defer proc.Detach()

	var err error
	if *spawnFlag != "" {
		// ForceInit runs the native loader before the primary thread ever
		// executes, so the PEB below is fully populated.
		err = proc.CreateAndAttach(*spawnFlag, process_windows.CreateOptions{
			Suspended: true,
			ForceInit: true,
		})
	} else {
		err = proc.Attach(process.ProcessID(*pidFlag), process_windows.DefaultAccess)
	}
	if err != nil {
		fmt.Printf("Error attaching: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Attached to process %d (valid=%v)\n", proc.Pid(), proc.Valid())

	ntdll := proc.Modules().Resolve("ntdll.dll", process.SearchSections)
	fmt.Printf("ntdll.dll base: %s\n", ntdll.ToString())

	peb := proc.Loader().(*process_windows.LoaderProbe).PEB()
	if peb == 0 {
		fmt.Println("Error: PEB base unknown")
		os.Exit(1)
	}

	data, err := proc.Memory().Read(peb, *sizeFlag)
	if err != nil {
		fmt.Printf("Error reading PEB at %s: %v\n", peb.ToString(), err)
		os.Exit(1)
	}

	fmt.Printf("PEB at %s:\n", peb.ToString())
	fmt.Print(hexdump.DumpWithOffset(data, uint64(peb)))

	if *spawnFlag != "" {
		if err := proc.Terminate(0); err != nil {
			fmt.Printf("Error terminating spawned process: %v\n", err)
		}
	}
}
