package tram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const sendingText = "Envoi en cours..."

var (
	ErrIncompleteContact = errors.New("email and message are required")
	ErrInvalidEmail      = errors.New("invalid email")
)

type ContactSender interface {
	SendContact(ctx context.Context, email string, message string) (string, error)
}

type contactForm struct {
	Email   string `validate:"required,email"`
	Message string `validate:"required"`
}

// ContactFlow submits the contact form.
type ContactFlow struct {
	// Called with status text as the submission progresses.
	OnStatus func(string)

	sender   ContactSender
	validate *validator.Validate
}

func NewContactFlow(sender ContactSender) *ContactFlow {
	return &ContactFlow{
		sender:   sender,
		validate: validator.New(),
	}
}

// Send submits a message and returns the server's acknowledgement
// verbatim.
func (f *ContactFlow) Send(ctx context.Context, email string, message string) (string, error) {
	form := contactForm{
		Email:   strings.TrimSpace(email),
		Message: strings.TrimSpace(message),
	}
	if form.Email == "" || form.Message == "" {
		return "", ErrIncompleteContact
	}
	if err := f.validate.Struct(form); err != nil {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidEmail, form.Email)
	}

	f.status(sendingText)

	ack, err := f.sender.SendContact(ctx, form.Email, form.Message)
	if err != nil {
		return "", fmt.Errorf("sending contact: %w", err)
	}

	f.status(ack)
	return ack, nil
}

func (f *ContactFlow) status(s string) {
	if f.OnStatus != nil {
		f.OnStatus(s)
	}
}
