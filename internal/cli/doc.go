// Package cli implements the dockmon command-line interface.
//
// The root command is the dashboard itself; the subcommands are helpers
// around it:
//
//	dockmon               - Watch the daemon (dashboard, or --no-gui summary)
//	dockmon config init   - Write a .dockmon.yaml with the defaults
//	dockmon config show   - Print the effective configuration
//	dockmon hosts         - List ~/.ssh/config aliases usable as --host
//	dockmon doctor        - Diagnose config, daemon and SSH problems
//	dockmon version       - Print build information
//	dockmon completion    - Generate shell completion scripts
//
// # Startup
//
// runCommand resolves the configuration (flags over DOCKMON_* environment
// over config file over defaults), opens the log file, connects to the
// daemon and starts the sync loop, then hands the terminal to the
// dashboard. A failed connection is not returned immediately: the store
// holds a fatal error and both front ends show it with a countdown before
// exiting.
//
// # Shutdown
//
// SIGINT and SIGTERM cancel the root context, which sets the shared
// shutdown flag. The dashboard and the headless reporter both watch that
// flag, and runCommand waits for the sync loop to drain before returning.
package cli
