package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/dmitrijs2005/proposals/internal/server/models"
)

const (
	subjectAccepted = "🎉 Great News! Someone Accepted Your Proposal!"
	subjectDeclined = "💙 Response to Your Proposal"
)

const acceptedText = `Great news!

Someone has accepted your proposal! They said YES! 🎉

Your proposal link: {{.Link}}

Congratulations!! I am so, so happy for you! You totally deserve this.
`

const declinedText = `Hello,

Someone has responded to your proposal. Unfortunately, they said no this time.

Your proposal link: {{.Link}}

It's okay to feel disappointed, sad or angry. Take all the time you need to process it.
`

const acceptedHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #e91e63;">🎉 Congratulations! 🎉</h1>
    <p>Someone has accepted your proposal! They said <strong>YES</strong>!</p>
    <p>I am so, so happy for you! You totally deserve this.</p>
    <p><a href="{{.Link}}">View your proposal</a></p>
  </div>
</body>
</html>
`

const declinedHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #2196f3;">💙 Response to Your Proposal</h1>
    <p>Someone has responded to your proposal. Unfortunately, they said no this time.</p>
    <p>It's okay to feel disappointed, sad or angry. Take all the time you need to process it.</p>
    <p><a href="{{.Link}}">View your proposal</a></p>
  </div>
</body>
</html>
`

var (
	textTemplates = map[models.Answer]*texttemplate.Template{
		models.AnswerYes: texttemplate.Must(texttemplate.New("accepted").Parse(acceptedText)),
		models.AnswerNo:  texttemplate.Must(texttemplate.New("declined").Parse(declinedText)),
	}
	htmlTemplates = map[models.Answer]*htmltemplate.Template{
		models.AnswerYes: htmltemplate.Must(htmltemplate.New("accepted").Parse(acceptedHTML)),
		models.AnswerNo:  htmltemplate.Must(htmltemplate.New("declined").Parse(declinedHTML)),
	}
)

// Render builds the owner notification for answer.
func Render(to string, answer models.Answer, link string) (Message, error) {
	textTpl, ok := textTemplates[answer]
	if !ok {
		return Message{}, fmt.Errorf("no template for answer %q", answer)
	}

	data := struct{ Link string }{Link: link}

	var text bytes.Buffer
	if err := textTpl.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}

	var html bytes.Buffer
	if err := htmlTemplates[answer].Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}

	subject := subjectDeclined
	if answer == models.AnswerYes {
		subject = subjectAccepted
	}

	return Message{To: to, Subject: subject, Text: text.String(), HTML: html.String()}, nil
}
