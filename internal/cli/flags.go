package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagSet provides type-safe flag extraction with error accumulation.
// Errors are collected and checked once at the end with Err().
type flagSet struct {
	flags *pflag.FlagSet
	errs  []error
}

func commandFlags(cmd *cobra.Command) *flagSet {
	return &flagSet{flags: cmd.Flags()}
}

// String extracts a string flag value. Errors are accumulated.
func (f *flagSet) String(name string) string {
	val, err := f.flags.GetString(name)
	if err != nil {
		f.errs = append(f.errs, fmt.Errorf("flag %s: %w", name, err))
	}
	return val
}

// Bool extracts a bool flag value. Errors are accumulated.
func (f *flagSet) Bool(name string) bool {
	val, err := f.flags.GetBool(name)
	if err != nil {
		f.errs = append(f.errs, fmt.Errorf("flag %s: %w", name, err))
	}
	return val
}

// Int extracts an int flag value. Errors are accumulated.
func (f *flagSet) Int(name string) int {
	val, err := f.flags.GetInt(name)
	if err != nil {
		f.errs = append(f.errs, fmt.Errorf("flag %s: %w", name, err))
	}
	return val
}

// Changed reports whether the flag was explicitly set.
func (f *flagSet) Changed(name string) bool {
	return f.flags.Changed(name)
}

// Err returns any accumulated errors joined together.
func (f *flagSet) Err() error {
	return errors.Join(f.errs...)
}
