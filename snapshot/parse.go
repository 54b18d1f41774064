package snapshot

import (
	"sort"
	"strings"

	"goproc/process"
)

// Filter selects which records Parse keeps. A zero PID together with an empty
// Name matches every process. Otherwise a record matches when its image name
// equals a non-empty Name case-insensitively, or its PID equals a non-zero
// PID. A zero PID on its own is never a wildcard.
type Filter struct {
	PID            process.ProcessID
	Name           string
	IncludeThreads bool
}

func (f Filter) matches(pid process.ProcessID, name string) bool {
	if f.PID == 0 && f.Name == "" {
		return true
	}
	if f.Name != "" && strings.EqualFold(name, f.Name) {
		return true
	}
	return f.PID != 0 && pid == f.PID
}

// Parse walks the record chain in buf and returns the matching processes,
// sorted ascending by PID. The idle process (PID 0) is always excluded.
func Parse(buf []byte, f Filter) ([]process.ProcessInfo, error) {
	found := []process.ProcessInfo{}
	c := newCursor(buf)

	for {
		rec, err := c.record()
		if err != nil {
			return nil, err
		}

		pid := process.ProcessID(rec.UniqueProcessID)
		if pid != 0 {
			name, err := c.imageName(rec.ImageName)
			if err != nil {
				return nil, err
			}

			if f.matches(pid, name) {
				info := process.ProcessInfo{PID: pid, ImageName: name}

				if f.IncludeThreads {
					raw, err := c.threads(rec.NumberOfThreads)
					if err != nil {
						return nil, err
					}
					info.Threads = collectThreads(raw)
				}

				found = append(found, info)
			}
		}

		more, err := c.advance(rec.NextEntryOffset)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Less(found[j]) })
	return found, nil
}

// collectThreads extracts thread IDs and start addresses, then flags the
// thread with the earliest kernel creation time as the main thread. Exactly
// one entry carries the flag; a zero-thread record yields no designation.
func collectThreads(raw []systemExtendedThreadInformation) []process.ThreadInfo {
	if len(raw) == 0 {
		return nil
	}

	threads := make([]process.ThreadInfo, len(raw))
	mainIdx := 0
	for i, thd := range raw {
		threads[i] = process.ThreadInfo{
			TID:          process.ThreadID(thd.ThreadInfo.ClientID.UniqueThread),
			StartAddress: process.Address(thd.ThreadInfo.StartAddress),
		}
		if thd.ThreadInfo.CreateTime < raw[mainIdx].ThreadInfo.CreateTime {
			mainIdx = i
		}
	}
	threads[mainIdx].MainThread = true
	return threads
}
