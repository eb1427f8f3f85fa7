// Package mailer turns queued mail messages into SMTP messages.
package mailer

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

var ErrUnsupportedType = errors.New("unsupported mail type")

const shiftPlannedSubject = "Shift planner - your shifts for the coming week"

type Composer struct {
	from         string
	shiftPlanned *template.Template
}

// NewComposer parses the mail templates found in templateDir.
func NewComposer(from, templateDir string) (*Composer, error) {
	shiftPlanned, err := template.ParseFiles(filepath.Join(templateDir, "shift_planned_email.html"))
	if err != nil {
		return nil, fmt.Errorf("parse shift planned template: %w", err)
	}

	return &Composer{
		from:         from,
		shiftPlanned: shiftPlanned,
	}, nil
}

// Compose decodes a queued message body and renders it. Errors mean the message can never be
// sent and should not be requeued.
func (c *Composer) Compose(body []byte) (*mail.Msg, error) {
	var envelope struct {
		Type string          `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode mail message: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(envelope.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}

	switch envelope.Type {
	case domain.MailTypeShiftPlanned:
		var data domain.ShiftPlannedMailData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode shift planned data: %w", err)
		}
		if err := msg.SetBodyHTMLTemplate(c.shiftPlanned, data); err != nil {
			return nil, fmt.Errorf("render shift planned mail: %w", err)
		}
		msg.Subject(shiftPlannedSubject)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, envelope.Type)
	}

	return msg, nil
}
