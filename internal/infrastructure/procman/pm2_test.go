package procman

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestControlRejectsBadInputBeforeExec(t *testing.T) {
	// Point at a binary that cannot exist so an accidental exec fails
	// loudly instead of touching a real pm2.
	p := &PM2{bin: "/nonexistent/pm2", log: zerolog.Nop()}
	ctx := context.Background()

	cases := []struct{ action, id string }{
		{"reboot", "0"},
		{"start", ""},
		{"start", "api; rm -rf /"},
		{"start", "name with spaces"},
		{"stop", "../escape"},
	}
	for _, tc := range cases {
		if err := p.Control(ctx, tc.action, tc.id); err == nil {
			t.Fatalf("Control(%q, %q): expected validation error", tc.action, tc.id)
		}
	}
}

func TestValidName(t *testing.T) {
	for _, ok := range []string{"api", "worker-2", "app_0", "svc.prod", "3"} {
		if !validName(ok) {
			t.Fatalf("validName(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "a b", "x;y", "a/b", "café"} {
		if validName(bad) {
			t.Fatalf("validName(%q) = true", bad)
		}
	}
}
