package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

const ResetPasswordSubject = "ShopIT Password Recovery"

var resetPasswordTmpl = template.Must(template.New("reset_password").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Password Reset</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="background-color: #22bc66; color: #fff; padding: 20px; text-align: center;">ShopIT</h1>
    <p>Hi {{.Name}},</p>
    <p>You recently requested to reset your password for your ShopIT account. Use the button below to reset it.</p>
    <p style="text-align: center;">
        <a href="{{.URL}}" style="display: inline-block; background-color: #22bc66; color: #fff; padding: 12px 30px; text-decoration: none; border-radius: 5px;">Reset your password</a>
    </p>
    <p>If you did not request a password reset, please ignore this email.</p>
    <p>If the button does not work, copy and paste this URL into your browser:</p>
    <p style="word-break: break-all;">{{.URL}}</p>
    <p>Thanks,<br>The ShopIT Team</p>
</body>
</html>
`))

// ResetPasswordTemplate renders the body of the recovery email.
func ResetPasswordTemplate(name, resetURL string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Name string
		URL  string
	}{Name: name, URL: resetURL}

	if err := resetPasswordTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}
