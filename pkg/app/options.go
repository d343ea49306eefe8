package app

import "github.com/spf13/pflag"

// CliOptions is the interface an options struct implements to be wired
// into an App.
type CliOptions interface {
	// AddFlags adds flags to the flagset.
	AddFlags(fs *pflag.FlagSet)
	// Complete fills in derived defaults after config loading.
	Complete() error
	// Validate validates the options.
	Validate() error
}
