package dashboard

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	title      = "User Management Dashboard"
	notAvail   = "N/A"
	noUsers    = "No users found"
	colGap     = 2
	labelWidth = 13
)

// Render escribe la vista en texto plano: el formulario si hay uno abierto,
// si no la tabla con su paginador.
func Render(w io.Writer, v View) error {
	bw := bufio.NewWriter(w)
	line := func(s string) {
		bw.WriteString(strings.TrimRight(s, " "))
		bw.WriteByte('\n')
	}

	line(title)
	line("")

	switch {
	case v.Form != nil:
		renderForm(line, v.Form)
	case v.Loading:
		line("Loading...")
	default:
		renderList(line, v)
	}
	return bw.Flush()
}

func orNA(s string) string {
	if s == "" {
		return notAvail
	}
	return s
}

func renderList(line func(string), v View) {
	line(fmt.Sprintf("User List (%d)  [Add User]", v.TotalUsers))
	line("")

	rows := [][]string{{"ID", "Full Name", "Email", "Department"}}
	for _, u := range v.Users {
		rows = append(rows, []string{strconv.Itoa(u.ID), orNA(u.Name), orNA(u.Email), orNA(u.Department)})
	}

	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, c := range r {
			if n := len([]rune(c)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for _, r := range rows {
		var sb strings.Builder
		for i, c := range r {
			sb.WriteString(c)
			if i < len(r)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-len([]rune(c))+colGap))
			}
		}
		line(sb.String())
	}
	if len(v.Users) == 0 {
		line(noUsers)
	}

	if v.TotalPages > 1 {
		line("")
		line(pager(v))
	}
}

// pager dibuja "Previous  1  [2]  3  Next"; un botón deshabilitado va entre paréntesis.
func pager(v View) string {
	parts := make([]string, 0, len(v.PageNumbers)+2)
	prev, next := "Previous", "Next"
	if !v.HasPrev {
		prev = "(" + prev + ")"
	}
	if !v.HasNext {
		next = "(" + next + ")"
	}
	parts = append(parts, prev)
	for _, n := range v.PageNumbers {
		s := strconv.Itoa(n)
		if n == v.Page {
			s = "[" + s + "]"
		}
		parts = append(parts, s)
	}
	parts = append(parts, next)
	return strings.Join(parts, "  ")
}

func renderForm(line func(string), f *FormView) {
	heading := f.Title
	if f.ID > 0 {
		heading = fmt.Sprintf("%s #%d", f.Title, f.ID)
	}
	line(heading)
	line("")

	field := func(label, value, key string, extra ...string) {
		line(fmt.Sprintf("%-*s%s", labelWidth, label, value))
		if msg := f.Errors[key]; msg != "" {
			line(strings.Repeat(" ", labelWidth) + "! " + msg)
		}
		for _, msg := range extra {
			if msg != "" {
				line(strings.Repeat(" ", labelWidth) + "! " + msg)
			}
		}
	}
	field("Full Name:", f.Fields.Name, "name")
	field("Email:", f.Fields.Email, "email", f.EmailError)
	field("Department:", f.Fields.Department, "department")

	line("")
	line("[Save]  [Cancel]")
}
