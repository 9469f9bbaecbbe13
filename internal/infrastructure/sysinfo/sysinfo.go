// Package sysinfo is a best-effort Linux host metrics collector reading
// /proc and statfs. Callers treat any error as a degraded reading, never
// as a request failure.
package sysinfo

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/serverpanel/serverpanel/internal/core/ports"
)

const cpuSampleWindow = 150 * time.Millisecond

// Collector implements ports.MetricsCollector for Linux hosts.
type Collector struct{}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Collect(ctx context.Context) (ports.MetricsSnapshot, error) {
	cpu, err := cpuPercent(ctx)
	if err != nil {
		return ports.MetricsSnapshot{}, fmt.Errorf("cpu: %w", err)
	}
	mem, err := memPercent()
	if err != nil {
		return ports.MetricsSnapshot{}, fmt.Errorf("memory: %w", err)
	}
	uptime, err := uptimeSeconds()
	if err != nil {
		return ports.MetricsSnapshot{}, fmt.Errorf("uptime: %w", err)
	}

	snap := ports.MetricsSnapshot{
		CPUPct:        cpu,
		MemPct:        mem,
		UptimeSeconds: uptime,
	}
	// Disk info is optional; a failure degrades to nil rather than
	// failing the whole snapshot.
	if disk, err := diskInfo("/"); err == nil {
		snap.Disk = disk
	}
	return snap, nil
}

// cpuPercent samples /proc/stat twice and derives busy time over the
// window.
func cpuPercent(ctx context.Context) (int, error) {
	busy1, total1, err := readCPUStat()
	if err != nil {
		return 0, err
	}
	select {
	case <-time.After(cpuSampleWindow):
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	busy2, total2, err := readCPUStat()
	if err != nil {
		return 0, err
	}
	if total2 <= total1 {
		return 0, nil
	}
	pct := float64(busy2-busy1) / float64(total2-total1) * 100
	return int(pct + 0.5), nil
}

func readCPUStat() (busy, total uint64, err error) {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return 0, 0, err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "cpu" {
		return 0, 0, fmt.Errorf("unexpected /proc/stat line %q", line)
	}
	var values []uint64
	for _, f := range fields[1:] {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return 0, 0, err
		}
		values = append(values, v)
	}
	for i, v := range values {
		total += v
		// fields: user nice system idle iowait irq softirq steal ...
		if i != 3 && i != 4 {
			busy += v
		}
	}
	return busy, total, nil
}

func memPercent() (int, error) {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0, err
	}
	var totalKB, availKB uint64
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			totalKB, _ = strconv.ParseUint(fields[1], 10, 64)
		case "MemAvailable:":
			availKB, _ = strconv.ParseUint(fields[1], 10, 64)
		}
	}
	if totalKB == 0 {
		return 0, fmt.Errorf("MemTotal missing from /proc/meminfo")
	}
	used := totalKB - availKB
	return int(float64(used)/float64(totalKB)*100 + 0.5), nil
}

func uptimeSeconds() (int64, error) {
	data, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return 0, err
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(data)), " ")
	secs, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return 0, err
	}
	return int64(secs), nil
}

func diskInfo(mount string) (*ports.DiskInfo, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(mount, &st); err != nil {
		return nil, err
	}
	total := st.Blocks * uint64(st.Bsize)
	free := st.Bavail * uint64(st.Bsize)
	if total == 0 {
		return nil, fmt.Errorf("statfs reported zero size for %s", mount)
	}
	used := total - free
	return &ports.DiskInfo{
		TotalBytes: total,
		FreeBytes:  free,
		UsedPct:    int(float64(used)/float64(total)*100 + 0.5),
		FreePct:    int(float64(free)/float64(total)*100 + 0.5),
	}, nil
}
