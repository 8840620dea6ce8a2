package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/userdash/internal/dashboard"
	"github.com/dropDatabas3/userdash/internal/domain/repository"
)

const shellHelp = `commands:
  list                 show the current page
  page N | next | prev move between pages
  new                  open the Add User form
  edit ID              open the Edit User form
  set field=value      set name, email or department on the open form
  save                 save the open form
  close                close the form without saving
  delete ID            delete a user
  help                 this text
  quit                 exit
`

// NewShellCommand creates the interactive dashboard shell.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive dashboard (reads commands from stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			sh := NewShell(dashboard.New(c.Users, rootOpts.Config.Dashboard.PageSize), cmd.OutOrStdout())
			return sh.Run(ctx, cmd.InOrStdin())
		},
	}
}

// Shell traduce líneas de texto a intents del dashboard y re-renderiza.
type Shell struct {
	d   *dashboard.Dashboard
	out io.Writer
}

// NewShell crea un Shell sobre d que escribe en out.
func NewShell(d *dashboard.Dashboard, out io.Writer) *Shell {
	return &Shell{d: d, out: out}
}

// Run lee comandos hasta "quit" o EOF.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	if err := s.render(); err != nil {
		return err
	}
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		quit, err := s.Exec(ctx, sc.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Exec ejecuta una línea. Los errores de uso y de dominio no cortan el shell.
func (s *Shell) Exec(ctx context.Context, line string) (quit bool, err error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "":
		return false, nil
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		_, err := io.WriteString(s.out, shellHelp)
		return false, err
	case "list", "ls":
	case "next":
		s.d.NextPage()
	case "prev":
		s.d.PrevPage()
	case "page":
		n, err := atoiArg(verb, rest)
		if err != nil {
			return false, err
		}
		s.d.GoToPage(n)
	case "new", "add":
		s.d.NewUser()
	case "edit":
		id, err := atoiArg(verb, rest)
		if err != nil {
			return false, err
		}
		if err := s.d.EditUserID(id); err != nil {
			if repository.IsNotFound(err) {
				return false, fmt.Errorf("no user #%d", id)
			}
			return false, err
		}
	case "set":
		name, value, ok := strings.Cut(rest, "=")
		if !ok {
			return false, errors.New("usage: set field=value")
		}
		if err := s.d.SetField(name, strings.TrimSpace(value)); err != nil {
			return false, err
		}
	case "save":
		err := s.d.SaveDraft(ctx)
		switch {
		case err == nil, errors.Is(err, dashboard.ErrValidation), repository.IsDuplicateEmail(err):
			// el formulario muestra los errores
		default:
			return false, err
		}
	case "close", "cancel":
		s.d.CloseForm()
	case "delete", "rm":
		id, err := atoiArg(verb, rest)
		if err != nil {
			return false, err
		}
		if err := s.d.DeleteUser(ctx, id); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("unknown command %q (try help)", verb)
	}
	return false, s.render()
}

func (s *Shell) render() error {
	return dashboard.Render(s.out, s.d.View())
}

func atoiArg(verb, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("usage: %s N", verb)
	}
	return n, nil
}
