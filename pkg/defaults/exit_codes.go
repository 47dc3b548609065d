package defaults

// Exit codes for the CLI.
const (
	ExitSuccess  = 0   // Command completed; a CRITICAL verdict is still a success
	ExitFailure  = 1   // Invalid input, unreachable scanner or I/O failure
	ExitCanceled = 130 // Interrupted by SIGINT/SIGTERM
)
