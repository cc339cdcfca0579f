package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/handlers"
	"github.com/rustyeddy/tradejournal/journal"
)

func newMethodCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "method",
		Short: "Manage trading methods",
		Long: `Manage the trading methods trades are attributed to.

Usage count, win rate and total P/L of a method are maintained from its
trades and cannot be edited here.

Examples:
  tradejournal method add --code BO --name Breakout --default
  tradejournal method list
  tradejournal method set-default <method-id>`,
	}

	cmd.AddCommand(
		newMethodAddCmd(a),
		newMethodListCmd(a),
		newMethodGetCmd(a),
		newMethodUpdateCmd(a),
		newMethodDeleteCmd(a),
		newMethodDefaultCmd(a),
		newMethodSetDefaultCmd(a),
	)
	return cmd
}

func newMethodAddCmd(a *app) *cobra.Command {
	var m journal.Method
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
				return emit(a, cmd, h.CreateMethod(cmd.Context(), m), printMethod)
			})
		},
	}
	cmd.Flags().StringVar(&m.ID, "id", "", "Explicit id (generated when empty)")
	cmd.Flags().StringVar(&m.Code, "code", "", "Short code, e.g. BO")
	cmd.Flags().StringVar(&m.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&m.Description, "description", "", "Description")
	cmd.Flags().BoolVar(&m.IsDefault, "default", false, "Make this the default method")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newMethodListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List methods, most used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
				return emit(a, cmd, h.ListMethods(cmd.Context()), printMethods)
			})
		},
	}
}

func newMethodGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <method-id>",
		Short: "Show one method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
				return emit(a, cmd, h.GetMethod(cmd.Context(), args[0]), printMethod)
			})
		},
	}
}

func newMethodUpdateCmd(a *app) *cobra.Command {
	var (
		code, name, description string
		isDefault               bool
	)
	cmd := &cobra.Command{
		Use:   "update <method-id>",
		Short: "Change code, name, description or the default flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p journal.MethodPatch
			if cmd.Flags().Changed("code") {
				p.Code = &code
			}
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("description") {
				p.Description = &description
			}
			if cmd.Flags().Changed("default") {
				p.IsDefault = &isDefault
			}
			return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
				return emit(a, cmd, h.UpdateMethod(cmd.Context(), args[0], p), printMethod)
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "New code")
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().BoolVar(&isDefault, "default", false, "Set or clear the default flag")
	return cmd
}

func newMethodDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <method-id>",
		Short: "Delete a method; its trades keep their method name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
				return emit(a, cmd, h.DeleteMethod(cmd.Context(), args[0]), done(fmt.Sprintf("deleted method %s", args[0])))
			})
		},
	}
}

func newMethodDefaultCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "Show the default method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
				return emit(a, cmd, h.DefaultMethod(cmd.Context()), printMethod)
			})
		},
	}
}

func newMethodSetDefaultCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <method-id>",
		Short: "Make a method the only default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withJournal(cmd.Context(), func(h *handlers.Handlers) error {
				return emit(a, cmd, h.SetDefaultMethod(cmd.Context(), args[0]), done(fmt.Sprintf("default method is now %s", args[0])))
			})
		},
	}
}
