package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/userdash/internal/domain/repository"
	"github.com/dropDatabas3/userdash/internal/validation"
)

// listOutput es la salida JSON de list.
type listOutput struct {
	Users      []repository.UserRecord `json:"users"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalPages int                     `json:"total_pages"`
	TotalItems int                     `json:"total_items"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users, one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			if size < 1 {
				size = rootOpts.Config.Dashboard.PageSize
			}
			p := c.Users.Page(page, size)

			var sb strings.Builder
			tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tDEPARTMENT")
			for _, u := range p.Items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, orNA(u.Name), orNA(u.Email), orNA(u.Department))
			}
			_ = tw.Flush()
			fmt.Fprintf(&sb, "page %d/%d (%d users)\n", p.Page, p.TotalPages, p.TotalItems)

			return rootOpts.formatter(cmd).Success(listOutput{
				Users:      p.Items,
				Page:       p.Page,
				PageSize:   p.PageSize,
				TotalPages: p.TotalPages,
				TotalItems: p.TotalItems,
			}, sb.String())
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&size, "page-size", 0, "users per page (default from config)")
	return cmd
}

func bindFieldFlags(cmd *cobra.Command, f *repository.UserFields) {
	cmd.Flags().StringVar(&f.Name, "name", "", "full name")
	cmd.Flags().StringVar(&f.Email, "email", "", "email address (unique)")
	cmd.Flags().StringVar(&f.Department, "department", "", "department")
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var f repository.UserFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		Example: `  userdash add --name "Ann Lee" --email ann@example.com --department Ops`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := rootOpts.formatter(cmd)
			if errs := validation.ValidateUser(f); !errs.Empty() {
				return rejectValidation(out, errs)
			}

			c, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			u, err := c.Users.Add(ctx, f)
			if err != nil {
				return rejectStoreError(out, err)
			}
			return out.Success(u, fmt.Sprintf("Added user #%d (%s)\n", u.ID, u.Email))
		},
	}
	bindFieldFlags(cmd, &f)
	return cmd
}

// NewUpdateCommand creates the update command. Solo se cambian los campos pasados.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		id int
		f  repository.UserFields
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a user in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := rootOpts.formatter(cmd)

			c, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			existing, err := c.Users.Get(id)
			if err != nil {
				return rejectStoreError(out, err)
			}

			merged := existing.Fields()
			if cmd.Flags().Changed("name") {
				merged.Name = f.Name
			}
			if cmd.Flags().Changed("email") {
				merged.Email = f.Email
			}
			if cmd.Flags().Changed("department") {
				merged.Department = f.Department
			}
			if errs := validation.ValidateUser(merged); !errs.Empty() {
				return rejectValidation(out, errs)
			}

			u, err := c.Users.Update(ctx, existing.WithFields(merged))
			if err != nil {
				return rejectStoreError(out, err)
			}
			return out.Success(u, fmt.Sprintf("Updated user #%d\n", u.ID))
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "user id")
	_ = cmd.MarkFlagRequired("id")
	bindFieldFlags(cmd, &f)
	return cmd
}

// NewDeleteCommand creates the delete command. Los ids se re-numeran después.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a user (remaining ids are renumbered)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			_, getErr := c.Users.Get(id)
			existed := getErr == nil
			if err := c.Users.Delete(ctx, id); err != nil {
				return WrapExitError(ExitCommandError, "delete", err)
			}

			text := fmt.Sprintf("Deleted user #%d\n", id)
			if !existed {
				text = fmt.Sprintf("No user #%d, nothing deleted\n", id)
			}
			return rootOpts.formatter(cmd).Success(map[string]any{"id": id, "deleted": existed}, text)
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "user id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func rejectValidation(out *OutputFormatter, errs validation.FieldErrors) error {
	_ = out.Error("VALIDATION_FAILED", "one or more fields are invalid", map[string]string(errs))
	return NewExitError(ExitFailure, "validation failed")
}

func rejectStoreError(out *OutputFormatter, err error) error {
	switch {
	case repository.IsDuplicateEmail(err):
		_ = out.Error("EMAIL_EXISTS", validation.MsgEmailExists, nil)
		return WrapExitError(ExitFailure, "add/update rejected", err)
	case repository.IsNotFound(err):
		_ = out.Error("USER_NOT_FOUND", "user not found", nil)
		return WrapExitError(ExitFailure, "user not found", err)
	default:
		return WrapExitError(ExitCommandError, "store", err)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

