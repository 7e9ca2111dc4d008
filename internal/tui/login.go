package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskr/internal/auth"
)

const (
	fieldEmail = iota
	fieldPassword
)

// loginForm is the email/password form shared by login and signup.
type loginForm struct {
	inputs     [2]textinput.Model
	focus      int
	signup     bool
	fieldErrs  map[string]string
	message    string
	showNotice bool
}

func newLoginForm() *loginForm {
	f := &loginForm{}

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = ""
	email.CharLimit = 254
	email.Cursor.SetMode(cursor.CursorStatic)

	password := textinput.New()
	password.Placeholder = "at least 6 characters"
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Cursor.SetMode(cursor.CursorStatic)

	f.inputs = [2]textinput.Model{email, password}
	f.setFocus(fieldEmail)
	return f
}

func (f *loginForm) email() string    { return f.inputs[fieldEmail].Value() }
func (f *loginForm) password() string { return f.inputs[fieldPassword].Value() }

func (f *loginForm) setFocus(i int) {
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *loginForm) next() { f.setFocus((f.focus + 1) % len(f.inputs)) }
func (f *loginForm) prev() { f.setFocus((f.focus + len(f.inputs) - 1) % len(f.inputs)) }

// toggleMode switches between login and signup and clears old errors.
func (f *loginForm) toggleMode() {
	f.signup = !f.signup
	f.fieldErrs = nil
	f.message = ""
}

// update forwards a key to the focused input. Typing clears that field's
// error.
func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	if len(f.fieldErrs) > 0 {
		name := auth.FieldEmail
		if f.focus == fieldPassword {
			name = auth.FieldPassword
		}
		delete(f.fieldErrs, name)
	}
	return cmd
}

func (f *loginForm) applyResult(res auth.Result) {
	f.fieldErrs = res.Fields
	f.message = res.Message
	if res.Authenticated {
		f.inputs[fieldPassword].Reset()
		f.fieldErrs = nil
		f.message = ""
	}
}

func (f *loginForm) view(busy bool) string {
	var b strings.Builder

	title := "Log in"
	if f.signup {
		title = "Sign up"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	f.field(&b, "Email", fieldEmail, auth.FieldEmail)
	f.field(&b, "Password", fieldPassword, auth.FieldPassword)

	switch {
	case busy:
		b.WriteString(mutedStyle.Render("Working..."))
		b.WriteString("\n")
	case f.message != "":
		b.WriteString(errorStyle.Render(f.message))
		b.WriteString("\n")
	}

	if f.signup && f.showNotice {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(auth.PrivacyNotice + "\n" + mutedStyle.Render("ctrl+g: got it")))
		b.WriteString("\n")
	}

	other := "ctrl+n: sign up instead"
	if f.signup {
		other = "ctrl+n: log in instead"
	}
	b.WriteString(helpStyle.Render("tab: next field · enter: submit · " + other + " · esc: quit"))
	return b.String()
}

func (f *loginForm) field(b *strings.Builder, label string, i int, name string) {
	marker := "  "
	if f.focus == i {
		marker = cursorStyle.Render("> ")
	}
	b.WriteString(marker)
	b.WriteString(labelStyle.Render(label + ": "))
	b.WriteString(f.inputs[i].View())
	b.WriteString("\n")
	if msg := f.fieldErrs[name]; msg != "" {
		b.WriteString("    ")
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}
}
