//go:build integration

package status

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dbassess/dbassess/internal/testutil"
)

func TestFetch_LiveServer(t *testing.T) {
	source := testutil.StartMySQLContainer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	m, err := Load(ctx, source, LoadOptions{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("Load(%s): %v", source, err)
	}

	for _, key := range []string{"version", "max_connections", "uptime", "performance_schema.memory"} {
		if _, ok := m.Lookup(key); !ok {
			t.Errorf("expected key %q in live mapping", key)
		}
	}
	var ssl int
	for _, k := range m.Keys() {
		if strings.HasPrefix(k, "ssl_") {
			ssl++
		}
	}
	if ssl == 0 {
		t.Error("expected ssl_* entries")
	}
}

func TestFetch_BadCredentials(t *testing.T) {
	source := testutil.StartMySQLContainer(t)
	d, err := ParseDescriptor(source)
	if err != nil {
		t.Fatal(err)
	}
	d.Password = "wrong"

	if _, err := Fetch(context.Background(), d); err == nil {
		t.Error("expected authentication failure")
	}
}
