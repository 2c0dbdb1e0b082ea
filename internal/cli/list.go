package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lupppig/orderkey/internal/store"
)

// NewListCommand creates the list command and its subcommands.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage ordered lists stored in SQLite",
	}

	cmd.AddCommand(newListShowCommand(rootOpts))
	cmd.AddCommand(newListAddCommand(rootOpts))
	cmd.AddCommand(newListMoveCommand(rootOpts))
	cmd.AddCommand(newListRemoveCommand(rootOpts))
	cmd.AddCommand(newListVerifyCommand(rootOpts))
	cmd.AddCommand(newListNamesCommand(rootOpts))

	return cmd
}

func newListShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <list>",
		Short: "Print the items of a list in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			s, err := openStore(rootOpts, cmd, f)
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.Items(cmd.Context(), args[0])
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeStore, "read list", err)
			}
			if items == nil {
				items = []store.Item{}
			}
			return f.Success(items, func(w io.Writer) { writeItems(w, items) })
		},
	}
}

func newListAddCommand(rootOpts *RootOptions) *cobra.Command {
	var at int
	cmd := &cobra.Command{
		Use:   "add <list> <title>",
		Short: "Add an item to a list",
		Long: `Add an item to a list. By default the item is appended; --at places it
at the given zero-based index.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			s, err := openStore(rootOpts, cmd, f)
			if err != nil {
				return err
			}
			defer s.Close()

			item, err := s.Add(cmd.Context(), args[0], args[1], at)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeStore, "couldn't add item", err)
			}
			return f.Success(item, func(w io.Writer) { writeItem(w, item) })
		},
	}
	cmd.Flags().IntVar(&at, "at", -1, "zero-based index to insert at (default: append)")
	return cmd
}

func newListMoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <index>",
		Short: "Move an item to a new index within its list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeReorder, "couldn't reorder item", fmt.Errorf("index %q: %w", args[1], err))
			}

			s, err := openStore(rootOpts, cmd, f)
			if err != nil {
				return err
			}
			defer s.Close()

			item, err := s.Move(cmd.Context(), args[0], to)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeReorder, "couldn't reorder item", err)
			}
			return f.Success(item, func(w io.Writer) { writeItem(w, item) })
		},
	}
}

func newListRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			s, err := openStore(rootOpts, cmd, f)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Remove(cmd.Context(), args[0]); err != nil {
				return f.Fail(ExitCommandError, ErrCodeStore, "couldn't remove item", err)
			}
			return f.Success(map[string]string{"removed": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "removed %s\n", args[0])
			})
		},
	}
}

func newListVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <list>",
		Short: "Report stored positions that are not valid order keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			s, err := openStore(rootOpts, cmd, f)
			if err != nil {
				return err
			}
			defer s.Close()

			problems, err := s.Verify(cmd.Context(), args[0])
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeStore, "verify list", err)
			}
			if len(problems) > 0 {
				return f.Fail(ExitFailure, ErrCodeCheck,
					fmt.Sprintf("%d malformed position(s)", len(problems)), problemsError(problems))
			}
			return f.Success(map[string]int{"problems": 0}, func(w io.Writer) {
				fmt.Fprintf(w, "%s: ok\n", args[0])
			})
		},
	}
}

func newListNamesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "Print the names of all lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			s, err := openStore(rootOpts, cmd, f)
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.Lists(cmd.Context())
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeStore, "read lists", err)
			}
			if names == nil {
				names = []string{}
			}
			return f.Success(names, func(w io.Writer) {
				for _, n := range names {
					fmt.Fprintln(w, n)
				}
			})
		},
	}
}

func writeItems(w io.Writer, items []store.Item) {
	for i, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%q\t%s\n", i, it.ID, it.Position.String(), it.Title)
	}
}

func writeItem(w io.Writer, it store.Item) {
	fmt.Fprintf(w, "%s\t%q\t%s\n", it.ID, it.Position.String(), it.Title)
}

func problemsError(problems []store.Problem) error {
	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = fmt.Errorf("%s (%s) at %q: %s", p.ID, p.Title, p.Position, p.Reason)
	}
	return errors.Join(errs...)
}
