package main

// Exit codes used by all commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable or malformed config)
	ExitDataError   = 3 // Data error (missing input file, malformed bibliography)
)
