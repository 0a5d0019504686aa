// Command dbassess fills MySQL/MariaDB assessment spreadsheets and prints
// chunked token cleanup statements.
package main

import (
	"os"

	"github.com/dbassess/dbassess/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
