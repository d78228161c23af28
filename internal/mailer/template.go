package mailer

import (
	"strings"
	"text/template"
)

// ResetMailSubject is the subject line of the password-reset email.
const ResetMailSubject = "Resetting your sync account password"

var resetMailTmpl = template.Must(template.New("reset").Parse(`Hello {{.Username}},

Someone (hopefully you) requested a password reset for the sync account
registered to this address.

To pick a new password, visit:

    {{.Host}}/weave-password-reset?username={{.Username}}&key={{.Code}}

or enter this reset code into the form:

    {{.Code}}

If you did not ask for a reset, you can ignore this message; your password
has not been changed and the code above expires on its own.
`))

// ResetMailData parameterizes the reset email body.
type ResetMailData struct {
	Host     string
	Username string
	Code     string
}

// RenderResetMail renders the password-reset email body.
func RenderResetMail(data ResetMailData) (string, error) {
	var b strings.Builder
	if err := resetMailTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
