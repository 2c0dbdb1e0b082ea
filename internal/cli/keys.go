package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lupppig/orderkey"
)

// KeyResult is the JSON payload of the key commands.
type KeyResult struct {
	Key string `json:"key"`
}

// ValidResult is one row of the valid command.
type ValidResult struct {
	Key   string `json:"key"`
	Valid bool   `json:"valid"`
}

// NewFirstCommand creates the first command.
func NewFirstCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "first",
		Short: "Print the key for the first item of an empty list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKey(newFormatter(rootOpts, cmd), orderkey.First())
		},
	}
}

// NewValidCommand creates the valid command.
func NewValidCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "valid <key>...",
		Short: "Check whether strings are valid order keys",
		Long: `Check whether each argument is a valid order key: non-empty, printable
ASCII only, and not ending in a space. Exits with status 1 if any key is
invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)

			results := make([]ValidResult, len(args))
			invalid := 0
			for i, arg := range args {
				results[i] = ValidResult{Key: arg, Valid: orderkey.IsValid(arg)}
				if !results[i].Valid {
					invalid++
				}
			}

			err := f.Success(results, func(w io.Writer) {
				for _, r := range results {
					state := "valid"
					if !r.Valid {
						state = "invalid"
					}
					fmt.Fprintf(w, "%q\t%s\n", r.Key, state)
				}
			})
			if err != nil {
				return err
			}
			if invalid > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d invalid key(s)", invalid))
			}
			return nil
		},
	}
}

// NewBeforeCommand creates the before command.
func NewBeforeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "before <key>",
		Short: "Print a key that sorts before the given key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(newFormatter(rootOpts, cmd), nil, &args[0])
		},
	}
}

// NewAfterCommand creates the after command.
func NewAfterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "after <key>",
		Short: "Print a key that sorts after the given key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(newFormatter(rootOpts, cmd), &args[0], nil)
		},
	}
}

// NewBetweenCommand creates the between command.
func NewBetweenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "between <low> <high>",
		Short: "Print a key that sorts strictly between two keys",
		Long: `Print a key that sorts strictly between low and high. low must sort
before high.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(newFormatter(rootOpts, cmd), &args[0], &args[1])
		},
	}
}

// runGen parses the raw bounds and computes a key between them. A nil bound
// is open.
func runGen(f *OutputFormatter, low, high *string) error {
	var bounds [2]*orderkey.Key
	for i, raw := range []*string{low, high} {
		if raw == nil {
			continue
		}
		k, err := orderkey.Parse(*raw)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeInvalidKey, "invalid key", err)
		}
		bounds[i] = &k
	}

	key, err := orderkey.GenBetween(bounds[0], bounds[1])
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidKey, "invalid bounds", err)
	}
	return printKey(f, key)
}

func printKey(f *OutputFormatter, key orderkey.Key) error {
	return f.Success(KeyResult{Key: key.String()}, func(w io.Writer) {
		fmt.Fprintln(w, key.String())
	})
}
