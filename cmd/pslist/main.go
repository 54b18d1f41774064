//go:build windows

package main

import (
	"flag"
	"fmt"
	"os"

	"goproc/process"
	"goproc/process_windows"
)

func main() {
	pidFlag := flag.Int("pid", 0, "Only show the process with this PID")
	nameFlag := flag.String("name", "", "Only show processes with this image name (case-insensitive)")
	threadsFlag := flag.Bool("threads", false, "Also list each process's threads")
	flag.Parse()

	found, err := process_windows.EnumProcesses(
		process.ProcessID(*pidFlag), *nameFlag, *threadsFlag)
	if err != nil {
		fmt.Printf("Error enumerating processes: %v\n", err)
		os.Exit(1)
	}

	if len(found) == 0 {
		fmt.Println("No matching processes")
		os.Exit(1)
	}

	for _, p := range found {
		name := p.ImageName
		if name == "" {
			name = "<unnamed>"
		}
		fmt.Printf("%6d  %s\n", p.PID, name)

		if !*threadsFlag {
			continue
		}
		for _, thd := range p.Threads {
			marker := " "
			if thd.MainThread {
				marker = "*"
			}
			fmt.Printf("        %s tid %-6d start %s\n", marker, thd.TID, thd.StartAddress.ToString())
		}
	}
}
