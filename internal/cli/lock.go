package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/guidebook/internal/ctxutil"
	"github.com/example/guidebook/internal/wire"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Manage edit locks",
	Long: `Acquire and release advisory edit locks.

A target is "tree" for the category tree, a manual ID, or a raw resource
name such as manual:MAN-001.`,
}

var lockAcquireCmd = &cobra.Command{
	Use:   "acquire [target]",
	Short: "Acquire a lock and print its token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		holder, _ := cmd.Flags().GetString("holder")
		if holder == "" {
			holder = ctxutil.DefaultActor()
		}
		_, err := wire.LockAdapter().Acquire(cmd.Context(), args[0], holder)
		return err
	},
}

var lockReleaseCmd = &cobra.Command{
	Use:   "release [target] [token]",
	Short: "Release a lock you hold",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LockAdapter().Release(cmd.Context(), args[0], args[1])
	},
}

var lockForceCmd = &cobra.Command{
	Use:   "force-release [target]",
	Short: "Release a lock regardless of holder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.LockAdapter().ForceRelease(cmd.Context(), args[0])
		return err
	},
}

var lockCheckCmd = &cobra.Command{
	Use:   "check [target]",
	Short: "Show who holds a lock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.LockAdapter().Check(cmd.Context(), args[0])
		return err
	},
}

var lockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List held locks",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.LockAdapter().List(cmd.Context())
		return err
	},
}

func init() {
	lockAcquireCmd.Flags().String("holder", "", "Lock holder name (default $GUIDEBOOK_ACTOR or $USER)")

	lockCmd.AddCommand(lockAcquireCmd)
	lockCmd.AddCommand(lockReleaseCmd)
	lockCmd.AddCommand(lockForceCmd)
	lockCmd.AddCommand(lockCheckCmd)
	lockCmd.AddCommand(lockListCmd)
}

// LockCmd returns the lock command
func LockCmd() *cobra.Command {
	return lockCmd
}
