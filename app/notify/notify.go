package notify

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// CommentNotice describes a new comment waiting for moderation.
type CommentNotice struct {
	To        string
	PostID    int
	PostTitle string
	Author    string
	Text      string
}

// Notifier tells post authors about comments awaiting approval.
type Notifier interface {
	CommentPosted(n CommentNotice) error
}

// Noop drops every notice. It is used when SMTP is not configured.
type Noop struct{}

func (Noop) CommentPosted(CommentNotice) error { return nil }

// Mailer sends notices over SMTP.
type Mailer struct {
	from    string
	baseURL string
	send    func(...*gomail.Message) error
}

// NewMailer creates a Mailer for the given SMTP server.
func NewMailer(host string, port int, username, password, from, baseURL string) *Mailer {
	dialer := gomail.NewDialer(host, port, username, password)
	return &Mailer{from: from, baseURL: baseURL, send: dialer.DialAndSend}
}

// CommentPosted mails the post author a link to the post.
func (m *Mailer) CommentPosted(n CommentNotice) error {
	if n.To == "" {
		return nil
	}
	return m.send(m.message(n))
}

func (m *Mailer) message(n CommentNotice) *gomail.Message {
	link := fmt.Sprintf("%s/posts/%d", m.baseURL, n.PostID)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", n.To)
	msg.SetHeader("Subject", fmt.Sprintf("New comment on %q", n.PostTitle))
	msg.SetBody("text/plain", fmt.Sprintf(
		"%s commented on %q:\n\n%s\n\nReview it at %s\n", n.Author, n.PostTitle, n.Text, link))
	msg.AddAlternative("text/html", fmt.Sprintf(
		"<p><strong>%s</strong> commented on <em>%s</em>:</p><blockquote>%s</blockquote><p><a href=\"%s\">Review it</a></p>",
		html.EscapeString(n.Author), html.EscapeString(n.PostTitle), n.Text, link))
	return msg
}
