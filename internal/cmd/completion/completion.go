// Package completion generates shell completion scripts for the CLI.
package completion

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap/pkg/errors"
)

// Supported shells.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
)

// Shells lists every supported shell.
var Shells = []string{ShellBash, ShellZsh, ShellFish, ShellPowerShell}

// Generate writes the completion script of root for shell to w.
func Generate(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case ShellBash:
		return root.GenBashCompletionV2(w, true)
	case ShellZsh:
		return root.GenZshCompletion(w)
	case ShellFish:
		return root.GenFishCompletion(w, true)
	case ShellPowerShell:
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return errors.NewValidationError("shell", shell, "unsupported shell")
	}
}

// NewCommand creates the completion command. It must be added to the root
// command so the script covers the whole tree.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

Bash:

  $ source <(coursemap completion bash)

Zsh:

  $ coursemap completion zsh > "${fpath[1]}/_coursemap"

Fish:

  $ coursemap completion fish | source

PowerShell:

  PS> coursemap completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             Shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Generate(cmd.Root(), args[0], cmd.OutOrStdout())
		},
	}
}
