// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// CodeEmailData holds data for the one-time code templates.
type CodeEmailData struct {
	SiteName  string
	Code      string
	ExpiresIn string // e.g. "15 minutes"
}

// BuildSignInCodeEmail renders the sign-in code email.
func BuildSignInCodeEmail(data CodeEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Your %s sign-in code", data.SiteName),
		TextBody: buildCodeText(data, "sign in to"),
		HTMLBody: buildCodeHTML(data, "sign in"),
	}
}

// BuildPasswordResetEmail renders the password reset code email.
func BuildPasswordResetEmail(data CodeEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Reset your %s password", data.SiteName),
		TextBody: buildCodeText(data, "reset your password on"),
		HTMLBody: buildCodeHTML(data, "reset your password"),
	}
}

func buildCodeText(data CodeEmailData, action string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Use this code to %s %s: %s\n\n", action, data.SiteName, data.Code))
	buf.WriteString(fmt.Sprintf("This code expires in %s.\n\n", data.ExpiresIn))
	buf.WriteString("If you did not request this code, you can safely ignore this email.\n")
	return buf.String()
}

type codeTemplateData struct {
	CodeEmailData
	Action string
}

func buildCodeHTML(data CodeEmailData, action string) string {
	tmpl := template.Must(template.New("code").Parse(codeHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, codeTemplateData{CodeEmailData: data, Action: action})
	return buf.String()
}

const codeHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>One-Time Code</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Use this code to {{.Action}}:
              </p>
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; text-align: center; margin-bottom: 24px;">
                <span style="font-size: 32px; font-weight: 700; letter-spacing: 6px; color: #1f2937; font-family: 'Courier New', monospace;">{{.Code}}</span>
              </div>
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">
                This code expires in {{.ExpiresIn}}.
              </p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                If you did not request this code, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
