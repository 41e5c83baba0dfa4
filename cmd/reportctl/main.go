// Command reportctl provisions the report portal: schema migration, user
// accounts and the orphaned blob sweep.
package main

import (
	"fmt" // Error output
	"os"  // Exit codes

	"report_portal/internal/config" // Configuration
)

func main() {
	cfg := config.LoadConfig() // Same environment as the server
	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
