package cli

import (
	"github.com/spf13/cobra"
)

// optionalString returns a pointer to the flag value when the flag was set.
func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// optionalInt returns a pointer to the flag value when the flag was set.
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

// optionalFloat returns a pointer to the flag value when the flag was set.
func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

// expectedRevision reads --revision. Unset means the current revision.
func expectedRevision(cmd *cobra.Command) *int64 {
	if !cmd.Flags().Changed("revision") {
		return nil
	}
	v, _ := cmd.Flags().GetInt64("revision")
	return &v
}

func addRevisionFlag(cmd *cobra.Command) {
	cmd.Flags().Int64("revision", 0, "Fail unless the manual is still at this revision")
}
