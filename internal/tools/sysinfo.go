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
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// cpuSampleInterval is how long the detailed report samples CPU load.
const cpuSampleInterval = 200 * time.Millisecond

func getSystemInfo(ctx context.Context, args map[string]interface{}) (string, error) {
	level := stringArg(args, "level", "basic")
	return describeSystem(level)
}

// describeSystem renders the system report at the requested verbosity.
// Any OS query that is unavailable on the host turns into a descriptive
// error instead of a crash; the dispatch boundary wraps it in the result
// envelope.
func describeSystem(level string) (string, error) {
	switch level {
	case "basic":
		return describeBasic()
	case "detailed":
		return describeDetailed()
	case "all":
		basic, err := describeBasic()
		if err != nil {
			return "", err
		}
		detailed, err := describeDetailed()
		if err != nil {
			return "", err
		}
		return basic + "\n\n" + detailed, nil
	default:
		return "", fmt.Errorf("unknown level %q (expected basic, detailed or all)", level)
	}
}

func describeBasic() (string, error) {
	info, err := host.Info()
	if err != nil {
		return "", fmt.Errorf("host information unavailable: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "OS: %s %s\n", info.Platform, info.PlatformVersion)
	fmt.Fprintf(&b, "Runtime: %s\n", runtime.Version())
	fmt.Fprintf(&b, "Processor: %s\n", processorName())
	fmt.Fprintf(&b, "Time: %s", time.Now().Format("2006-01-02 15:04:05"))
	return b.String(), nil
}

func describeDetailed() (string, error) {
	cores, err := cpu.Counts(true)
	if err != nil {
		return "", fmt.Errorf("CPU count unavailable: %v", err)
	}
	usage, err := cpu.Percent(cpuSampleInterval, false)
	if err != nil || len(usage) == 0 {
		return "", fmt.Errorf("CPU usage unavailable: %v", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return "", fmt.Errorf("memory statistics unavailable: %v", err)
	}
	du, err := disk.Usage(rootPath())
	if err != nil {
		return "", fmt.Errorf("disk statistics unavailable: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CPU cores: %d\n", cores)
	fmt.Fprintf(&b, "CPU usage: %.1f%%\n", usage[0])
	fmt.Fprintf(&b, "Memory total: %s, available: %s\n", humanBytes(vm.Total), humanBytes(vm.Available))
	fmt.Fprintf(&b, "Memory usage: %.1f%%\n", vm.UsedPercent)
	fmt.Fprintf(&b, "Disk total: %s, free: %s\n", humanBytes(du.Total), humanBytes(du.Free))
	fmt.Fprintf(&b, "Disk usage: %.1f%%", du.UsedPercent)
	return b.String(), nil
}

// processorName returns a CPU model identifier, falling back to the
// architecture when the model is not exposed.
func processorName() string {
	infos, err := cpu.Info()
	if err == nil && len(infos) > 0 && infos[0].ModelName != "" {
		return infos[0].ModelName
	}
	return runtime.GOARCH
}

// rootPath is the mount point reported by the disk section.
func rootPath() string {
	if runtime.GOOS == "windows" {
		return "C:\\"
	}
	return "/"
}

// humanBytes converts a byte count to a human-readable string, base 1024
// with one decimal place.
func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}

	value := float64(n)
	sizes := []string{"KB", "MB", "GB", "TB", "PB"}
	exp := -1
	for value >= unit && exp < len(sizes)-1 {
		value /= unit
		exp++
	}
	return fmt.Sprintf("%.1f%s", value, sizes[exp])
}
