//go:build wasm

package lockfile

// isProcessRunning is meaningless in a wasm sandbox: there is no host
// process table to query, so a held lock is always treated as live.
func isProcessRunning(pid int) bool {
	return pid > 0
}
