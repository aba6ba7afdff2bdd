// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	apperrors "toolbridge/internal/errors"
)

const (
	minProcessCount     = 1
	maxProcessCount     = 100
	defaultProcessCount = 10

	// restartPause is the gap between terminating a process and reporting
	// the restart attempt.
	restartPause = time.Second
)

// ProcessRecord is one row of the process listing, sourced live from the
// OS at call time. Fields the OS refuses to report fall back to sentinel
// values instead of failing the listing.
type ProcessRecord struct {
	Pid           int32
	Name          string
	CPUPercent    float64
	MemoryPercent float64
	Status        string
}

func listProcesses(ctx context.Context, args map[string]interface{}) (string, error) {
	maxCount, _ := intArg(args, "max_count", defaultProcessCount)
	if maxCount < minProcessCount {
		maxCount = minProcessCount
	}
	if maxCount > maxProcessCount {
		maxCount = maxProcessCount
	}
	sortBy := stringArg(args, "sort_by", "cpu")

	records, total, err := listProcessRecords(maxCount, sortBy)
	if err != nil {
		return "", err
	}
	return renderProcessTable(records, total), nil
}

// listProcessRecords enumerates live processes, sorts them by the chosen
// key and truncates to maxCount. Processes that exit or deny access during
// enumeration are skipped silently.
func listProcessRecords(maxCount int, sortBy string) ([]ProcessRecord, int, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, 0, fmt.Errorf("process enumeration unavailable: %v", err)
	}

	records := make([]ProcessRecord, 0, len(procs))
	for _, p := range procs {
		records = append(records, snapshotProcess(p))
	}

	sortProcessRecords(records, sortBy)

	total := len(records)
	if len(records) > maxCount {
		records = records[:maxCount]
	}
	return records, total, nil
}

// snapshotProcess reads one process, tolerating per-field failures. A
// record whose process vanished mid-read still comes back, with sentinel
// values in the fields that could not be read.
func snapshotProcess(p *process.Process) ProcessRecord {
	record := ProcessRecord{
		Pid:    p.Pid,
		Name:   "Unknown",
		Status: "Unknown",
	}
	if name, err := p.Name(); err == nil && name != "" {
		record.Name = name
	}
	if cpu, err := p.CPUPercent(); err == nil {
		record.CPUPercent = cpu
	}
	if memory, err := p.MemoryPercent(); err == nil {
		record.MemoryPercent = float64(memory)
	}
	if status, err := p.Status(); err == nil && len(status) > 0 {
		record.Status = strings.Join(status, ",")
	}
	return record
}

func sortProcessRecords(records []ProcessRecord, sortBy string) {
	switch sortBy {
	case "memory":
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].MemoryPercent > records[j].MemoryPercent
		})
	case "name":
		sort.SliceStable(records, func(i, j int) bool {
			return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
		})
	default: // cpu
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CPUPercent > records[j].CPUPercent
		})
	}
}

func renderProcessTable(records []ProcessRecord, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %-28s %7s %7s  %s\n", "PID", "NAME", "CPU%", "MEM%", "STATUS")
	for _, record := range records {
		name := record.Name
		if len(name) > 28 {
			name = name[:25] + "..."
		}
		fmt.Fprintf(&b, "%-8d %-28s %7.1f %7.1f  %s\n",
			record.Pid, name, record.CPUPercent, record.MemoryPercent, record.Status)
	}
	fmt.Fprintf(&b, "Showing %d of %d processes", len(records), total)
	return b.String()
}

func controlProcess(ctx context.Context, args map[string]interface{}) (string, error) {
	action := stringArg(args, "action", "")
	name := stringArg(args, "name", "")
	pid, hasPid := intArg(args, "pid", 0)

	if !hasPid && name == "" {
		return "", apperrors.New(apperrors.CodeValidation, "control_process requires a 'pid' or a 'name'")
	}

	// Starting processes, and signalling them by name alone, is advisory
	// only: target selection by name is ambiguous and spawning is unsafe.
	if action == "start" || !hasPid {
		target := name
		if target == "" {
			target = fmt.Sprintf("pid %d", pid)
		}
		return fmt.Sprintf("Action %q on %s was not actually executed for safety. "+
			"Provide a pid for stop, kill or restart.", action, target), nil
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("process %d not found", pid))
	}

	switch action {
	case "stop":
		if err := proc.Terminate(); err != nil {
			return "", fmt.Errorf("failed to stop process %d: %v", pid, err)
		}
		return fmt.Sprintf("Process %d terminated.", pid), nil
	case "kill":
		if err := proc.Kill(); err != nil {
			return "", fmt.Errorf("failed to kill process %d: %v", pid, err)
		}
		return fmt.Sprintf("Process %d killed.", pid), nil
	case "restart":
		if err := proc.Terminate(); err != nil {
			return "", fmt.Errorf("failed to stop process %d: %v", pid, err)
		}
		time.Sleep(restartPause)
		// Best effort: the old process was terminated but nothing spawns
		// a replacement. The caller is told exactly that.
		return fmt.Sprintf("Process %d terminated; restart attempted. "+
			"A new process is not spawned automatically.", pid), nil
	default:
		return "", apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown action %q", action))
	}
}
