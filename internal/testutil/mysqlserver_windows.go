//go:build windows

package testutil

import "testing"

// MySQLDockerImage is the image used for MySQL test containers.
const MySQLDockerImage = "mysql:8.4"

// StartMySQLContainer is not supported on Windows CI.
func StartMySQLContainer(t *testing.T) string {
	t.Helper()
	t.Skip("Docker not available on Windows CI")
	return ""
}
