package core

// PathStyle classifies an interpreter build by the path convention it
// expects on the command line.
type PathStyle string

const (
	// StyleNative accepts the host's native path form (drive letters on Windows).
	StyleNative PathStyle = "native"
	// StylePosixEmulation is an MSYS2/Cygwin-style build running on Windows
	// that only accepts /{drive}/{rest} paths.
	StylePosixEmulation PathStyle = "posix-emulation"
)

// ResolvedPaths is the output contract handed to the downstream launcher.
// InterpreterPath is always set; ToolPath and ScriptPath are empty when the
// corresponding binary or script does not exist (they are never fabricated).
type ResolvedPaths struct {
	InterpreterPath string `json:"interpreter_path"`
	ToolPath        string `json:"tool_path,omitempty"`
	ScriptPath      string `json:"script_path,omitempty"`
}

// Pipeline step names recorded in run history and used in error context.
const (
	StepDownload  = "download"
	StepExtract   = "extract"
	StepProvision = "provision"
)

// Exit codes for the CLI.
const (
	ExitSuccess         = 0
	ExitGeneral         = 1
	ExitInvalidArgs     = 2
	ExitInstallFailed   = 3
	ExitResolveFailed   = 4
	ExitDatabase        = 5
	ExitNetwork         = 7
	ExitCommandNotFound = 8
	ExitInterrupted     = 130
)
