// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

// Product carries the branding injected into every rendered email.
type Product struct {
	// Name is the product name shown in the header and signature.
	Name string

	// URL is the product homepage linked from the header.
	URL string

	// LogoURL is an optional logo image. Empty renders a text-only header.
	LogoURL string
}

// templateData is the merged input handed to both templates.
type templateData struct {
	Product Product
	Content Content
}

// htmlBody is a self-contained transactional email layout. Inline styles
// only: most mail clients strip <style> blocks.
const htmlBody = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f4f7;font-family:Helvetica,Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px;">
      <table width="570" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:4px;">
        <tr><td style="padding:24px;text-align:center;">
          {{if .Product.LogoURL}}<a href="{{.Product.URL}}"><img src="{{.Product.LogoURL}}" alt="{{.Product.Name}}" height="48"></a>
          {{else}}<a href="{{.Product.URL}}" style="font-size:18px;font-weight:bold;color:#333333;text-decoration:none;">{{.Product.Name}}</a>{{end}}
        </td></tr>
        <tr><td style="padding:0 24px 24px 24px;color:#51545e;font-size:15px;line-height:1.6;">
          <p>Hi {{.Content.Name}},</p>
          <p>{{.Content.Intro}}</p>
          {{if .Content.ButtonLink}}
          <p>{{.Content.ActionInstructions}}</p>
          <table width="100%" cellpadding="0" cellspacing="0"><tr><td align="center" style="padding:16px 0;">
            <a href="{{.Content.ButtonLink}}" style="background-color:{{.Content.ButtonColor}};color:#ffffff;padding:12px 28px;border-radius:4px;text-decoration:none;font-weight:bold;">{{.Content.ButtonText}}</a>
          </td></tr></table>
          {{end}}
          <p>{{.Content.Outro}}</p>
          <p>Yours truly,<br>The {{.Product.Name}} team</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`

// textBody is the plaintext alternative for clients that reject HTML.
const textBody = `Hi {{.Content.Name}},

{{.Content.Intro}}
{{if .Content.ButtonLink}}
{{.Content.ActionInstructions}}

{{.Content.ButtonLink}}
{{end}}
{{.Content.Outro}}

Yours truly,
The {{.Product.Name}} team
`

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.New("email_html").Parse(htmlBody))
	textTemplate = texttemplate.Must(texttemplate.New("email_text").Parse(textBody))
)

// Render produces the HTML and plaintext versions of a message body.
func Render(product Product, content Content) (html string, text string, err error) {
	data := templateData{Product: product, Content: content}

	var htmlBuilder strings.Builder
	if err := htmlTemplate.Execute(&htmlBuilder, data); err != nil {
		return "", "", fmt.Errorf("mail: failed to render html body: %w", err)
	}

	var textBuilder strings.Builder
	if err := textTemplate.Execute(&textBuilder, data); err != nil {
		return "", "", fmt.Errorf("mail: failed to render text body: %w", err)
	}

	return htmlBuilder.String(), textBuilder.String(), nil
}
