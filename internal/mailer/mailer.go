package mailer

import (
	"fmt"
	"html"
	"io"
	"strings"

	"gopkg.in/gomail.v2"

	"tixly/internal/config"
	"tixly/internal/models"
)

// Mailer delivers transactional HTML email over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg config.EmailConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.FromAddress,
	}
}

// SendTicket emails one issued ticket; the QR PNG rides along as an
// inline CID attachment so the image renders without remote fetches.
func (m *Mailer) SendTicket(to string, order models.Order, ticket models.Ticket) error {
	if len(ticket.QRCode) == 0 {
		return fmt.Errorf("ticket %s has no QR code", ticket.TicketID)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Your ticket for %s", order.EventName))
	msg.SetBody("text/html", ticketBody(order, ticket))
	msg.Embed("qrcode.png", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(ticket.QRCode)
		return err
	}))

	return m.dialer.DialAndSend(msg)
}

// SendEventUpdate emails a before/after diff of changed event fields.
func (m *Mailer) SendEventUpdate(to, eventName string, changes []models.EventChange) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Update: %s", eventName))
	msg.SetBody("text/html", EventUpdateBody(eventName, changes))

	return m.dialer.DialAndSend(msg)
}

func ticketBody(order models.Order, ticket models.Ticket) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:sans-serif;max-width:560px;margin:0 auto">`)
	b.WriteString(fmt.Sprintf("<h2>%s</h2>", html.EscapeString(order.EventName)))
	b.WriteString(fmt.Sprintf("<p>%s<br>%s</p>",
		html.EscapeString(order.EventDate.Format("Monday, 2 January 2006 15:04")),
		html.EscapeString(order.EventLocation)))
	b.WriteString(fmt.Sprintf("<p>Ticket number: <strong>%s</strong></p>",
		html.EscapeString(ticket.TicketNumber)))
	b.WriteString(`<p>Present this code at the entrance:</p>`)
	b.WriteString(`<img src="cid:qrcode.png" alt="ticket QR code" width="256" height="256">`)
	b.WriteString(`</div>`)
	return b.String()
}

// EventUpdateBody renders the field-diff table. Exported so the
// notification service can reuse it for in-app message previews.
func EventUpdateBody(eventName string, changes []models.EventChange) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:sans-serif;max-width:560px;margin:0 auto">`)
	b.WriteString(fmt.Sprintf("<h2>%s has been updated</h2>", html.EscapeString(eventName)))
	if len(changes) == 0 {
		b.WriteString("<p>The organizer updated this event. Check the event page for details.</p>")
	} else {
		b.WriteString(`<table style="border-collapse:collapse;width:100%">`)
		b.WriteString(`<tr><th align="left">Field</th><th align="left">Was</th><th align="left">Now</th></tr>`)
		for _, c := range changes {
			b.WriteString(fmt.Sprintf(
				`<tr><td style="padding:4px 8px">%s</td><td style="padding:4px 8px">%s</td><td style="padding:4px 8px"><strong>%s</strong></td></tr>`,
				html.EscapeString(c.Field), html.EscapeString(c.Before), html.EscapeString(c.After)))
		}
		b.WriteString("</table>")
	}
	b.WriteString(`</div>`)
	return b.String()
}
