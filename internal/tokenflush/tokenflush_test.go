package tokenflush

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

func TestConfigDefaults(t *testing.T) {
	var c *Config
	if got := c.Back(); got != defaultBack {
		t.Errorf("expected default back %v, got %v", defaultBack, got)
	}
	if got := c.Interval(); got != defaultInterval {
		t.Errorf("expected default interval %v, got %v", defaultInterval, got)
	}

	c = &Config{BackStr: "6h", IntervalStr: "15m"}
	if got := c.Back(); got != 6*time.Hour {
		t.Errorf("expected 6h, got %v", got)
	}
	if got := c.Interval(); got != 15*time.Minute {
		t.Errorf("expected 15m, got %v", got)
	}

	// Invalid falls back to default
	c.IntervalStr = "nope"
	if got := c.Interval(); got != defaultInterval {
		t.Errorf("expected default for invalid, got %v", got)
	}
	c.BackStr = "-1h"
	if got := c.Back(); got != defaultBack {
		t.Errorf("expected default for negative, got %v", got)
	}
}

func TestWindows_DefaultPlan(t *testing.T) {
	var c *Config
	p := c.Plan(fixedNow)

	windows, err := p.Windows()
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if len(windows) != 96 {
		t.Fatalf("expected 96 windows for 2 days / 30 minutes, got %d", len(windows))
	}

	if !windows[0].Start.Equal(fixedNow.Add(-48 * time.Hour)) {
		t.Errorf("first window starts at %v", windows[0].Start)
	}
	if !windows[len(windows)-1].End.Equal(fixedNow) {
		t.Errorf("last window ends at %v, want %v", windows[len(windows)-1].End, fixedNow)
	}
	for i, w := range windows {
		if !w.Start.Before(w.End) {
			t.Errorf("window %d: start %v not before end %v", i, w.Start, w.End)
		}
		if w.End.After(fixedNow) {
			t.Errorf("window %d ends after now", i)
		}
		if i > 0 && !windows[i-1].End.Equal(w.Start) {
			t.Errorf("window %d does not abut window %d", i, i-1)
		}
	}
}

func TestWindows_UnevenBack(t *testing.T) {
	p := &Plan{Now: fixedNow, Back: 100 * time.Minute, Interval: 30 * time.Minute, Table: "t", Column: "c"}
	windows, err := p.Windows()
	if err != nil {
		t.Fatal(err)
	}
	if len(windows) != 4 {
		t.Fatalf("expected 3 whole windows and a short one, got %d", len(windows))
	}
	for i := 1; i < len(windows); i++ {
		if !windows[i].Start.Equal(windows[i-1].End) {
			t.Errorf("gap between window %d and %d", i-1, i)
		}
	}
	last := windows[3]
	if !last.End.Equal(fixedNow) {
		t.Errorf("last window should end at now, got %v", last.End)
	}
	if got := last.End.Sub(last.Start); got != 10*time.Minute {
		t.Errorf("last window width = %v, want 10m", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
		want string
	}{
		{"zero interval", Plan{Back: time.Hour, Table: "t", Column: "c"}, "interval must be positive"},
		{"short back", Plan{Back: time.Minute, Interval: time.Hour, Table: "t", Column: "c"}, "shorter than interval"},
		{"bad table", Plan{Back: time.Hour, Interval: time.Minute, Table: "t; drop", Column: "c"}, "invalid table"},
		{"qualified column", Plan{Back: time.Hour, Interval: time.Minute, Table: "t", Column: "a.c"}, "invalid column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestStatement(t *testing.T) {
	p := (&Config{}).Plan(fixedNow)
	w := Window{Start: fixedNow.Add(-time.Hour), End: fixedNow.Add(-30 * time.Minute)}

	got := p.Statement(w)
	want := "DELETE FROM keystone.token WHERE token.expires BETWEEN '2024-03-10 13:30:00' AND '2024-03-10 14:00:00' AND token.expires < '2024-03-10 14:30:00';"
	if got != want {
		t.Errorf("Statement:\n got %s\nwant %s", got, want)
	}
}

func TestStatement_TruncatesSeconds(t *testing.T) {
	now := time.Date(2024, 3, 10, 14, 30, 59, 0, time.UTC)
	p := &Plan{Now: now, Back: time.Hour, Interval: 30 * time.Minute, Table: "token", Column: "expires"}
	stmts, err := p.Statements()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stmts[0], "token.expires < '2024-03-10 14:30:00'") {
		t.Errorf("seconds should render as 00: %s", stmts[0])
	}
}

func TestWriteTo(t *testing.T) {
	p := (&Config{BackStr: "2h", IntervalStr: "30m", Table: "auth.tokens", Column: "expires_at"}).Plan(fixedNow)

	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "DELETE FROM auth.tokens WHERE tokens.expires_at BETWEEN ") {
			t.Errorf("unexpected statement: %s", l)
		}
	}
}
