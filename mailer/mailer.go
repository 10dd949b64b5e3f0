package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/mailersend/mailersend-go"
	"github.com/yeremiapane/restaurant-booking/events"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

// Service e-mails booking owners about their bookings through MailerSend.
type Service struct {
	Client    *mailersend.Mailersend
	DB        *gorm.DB
	FromEmail string
	FromName  string
}

func NewService(apiKey, fromName, fromEmail string, db *gorm.DB) *Service {
	return &Service{
		Client:    mailersend.NewMailersend(apiKey),
		DB:        db,
		FromEmail: fromEmail,
		FromName:  fromName,
	}
}

func (m *Service) Name() string { return "mailersend" }

// Notify skips owners without an e-mail address.
func (m *Service) Notify(ctx context.Context, e events.Event) error {
	var user models.User
	if err := m.DB.WithContext(ctx).First(&user, e.Booking.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load booking owner: %w", err)
	}
	if user.Email == "" {
		return nil
	}

	subject, text, htmlBody := BuildMessage(e, user)
	if subject == "" {
		return nil
	}

	message := m.Client.Email.NewMessage()
	message.SetFrom(mailersend.From{Name: m.FromName, Email: m.FromEmail})
	message.SetRecipients([]mailersend.Recipient{{Name: user.FullName(), Email: user.Email}})
	message.SetSubject(subject)
	message.SetText(text)
	message.SetHTML(htmlBody)

	res, err := m.Client.Email.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	utils.InfoLogger.Printf("Email %q sent to user %d, message ID %s", subject, user.ID, res.Header.Get("X-Message-Id"))
	return nil
}

// BuildMessage renders subject, plain text and HTML for an event; an empty subject means nothing to send.
func BuildMessage(e events.Event, user models.User) (string, string, string) {
	title, body := services.DescribeEvent(e)
	if title == "" {
		return "", "", ""
	}
	greeting := "Hello"
	if name := user.FullName(); name != "" {
		greeting = "Hello, " + name
	}

	text := fmt.Sprintf("%s!\n\n%s\n", greeting, body)
	if e.Booking.SpecialRequests != "" {
		text += fmt.Sprintf("\nYour requests: %s\n", e.Booking.SpecialRequests)
	}

	htmlBody := fmt.Sprintf("<p>%s!</p><p>%s</p>", html.EscapeString(greeting), html.EscapeString(body))
	if e.Booking.SpecialRequests != "" {
		htmlBody += fmt.Sprintf("<p>Your requests: %s</p>", html.EscapeString(e.Booking.SpecialRequests))
	}
	return title, text, htmlBody
}
