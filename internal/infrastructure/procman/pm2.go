// Package procman adapts the pm2 process manager CLI to the
// ports.ProcessManager contract. It shells out to the pm2 binary; the
// service layer gates every call behind the config toggle.
package procman

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/core/ports"
)

// PM2 drives pm2 via its CLI. The zero value is not usable; use NewPM2.
type PM2 struct {
	bin string
	log zerolog.Logger
}

func NewPM2(log zerolog.Logger) *PM2 {
	return &PM2{bin: "pm2", log: log}
}

// pm2Process mirrors the subset of `pm2 jlist` output the panel uses.
type pm2Process struct {
	Name  string `json:"name"`
	PMID  int    `json:"pm_id"`
	PID   int    `json:"pid"`
	Monit struct {
		CPU    float64 `json:"cpu"`
		Memory uint64  `json:"memory"`
	} `json:"monit"`
}

func (p *PM2) List(ctx context.Context) ([]ports.ProcessInfo, error) {
	out, err := exec.CommandContext(ctx, p.bin, "jlist").Output()
	if err != nil {
		return nil, fmt.Errorf("pm2 jlist: %w", err)
	}

	var procs []pm2Process
	if err := json.Unmarshal(out, &procs); err != nil {
		return nil, fmt.Errorf("parse pm2 jlist output: %w", err)
	}

	infos := make([]ports.ProcessInfo, 0, len(procs))
	for _, proc := range procs {
		infos = append(infos, ports.ProcessInfo{
			Name:        proc.Name,
			ID:          proc.PMID,
			PID:         proc.PID,
			CPUPct:      proc.Monit.CPU,
			MemoryBytes: proc.Monit.Memory,
		})
	}
	return infos, nil
}

func (p *PM2) Control(ctx context.Context, action, id string) error {
	if !ports.ValidProcessAction(action) {
		return fmt.Errorf("pm2 action %q: not allowed", action)
	}
	// The id is interpolated into an argv slot, never a shell line, but
	// restrict it to pm2 ids/names all the same.
	if _, err := strconv.Atoi(id); err != nil && !validName(id) {
		return fmt.Errorf("pm2 id %q: not allowed", id)
	}

	out, err := exec.CommandContext(ctx, p.bin, action, id).CombinedOutput()
	if err != nil {
		p.log.Error().Err(err).Str("action", action).Str("id", id).
			Str("output", string(out)).Msg("pm2 control failed")
		return fmt.Errorf("pm2 %s %s: %w", action, id, err)
	}
	return nil
}

func validName(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
