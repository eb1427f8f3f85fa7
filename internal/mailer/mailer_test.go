package mailer

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func newComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer("planner@example.com", "../../templates")
	require.NoError(t, err)
	return c
}

func TestCompose_ShiftPlanned(t *testing.T) {
	body, err := json.Marshal(domain.MailMessage{
		Type: domain.MailTypeShiftPlanned,
		To:   "anna@example.com",
		Data: domain.ShiftPlannedMailData{
			Name:      "Anna Becker",
			WeekStart: "10.03.2025",
			WeekEnd:   "16.03.2025",
			Days:      []string{"Mon 10.03.2025", "Wed 12.03.2025"},
		},
	})
	require.NoError(t, err)

	msg, err := newComposer(t).Compose(body)

	require.NoError(t, err)
	require.Equal(t, "anna@example.com", msg.GetTo()[0].Address)
	require.Equal(t, []string{shiftPlannedSubject}, msg.GetGenHeader(mail.HeaderSubject))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Anna Becker")
}

func TestCompose_Rejects(t *testing.T) {
	c := newComposer(t)

	t.Run("unknown type", func(t *testing.T) {
		_, err := c.Compose([]byte(`{"type":"reset_password","to":"anna@example.com","data":{}}`))
		require.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("broken json", func(t *testing.T) {
		_, err := c.Compose([]byte(`{"type":`))
		require.Error(t, err)
	})

	t.Run("invalid recipient", func(t *testing.T) {
		_, err := c.Compose([]byte(`{"type":"shift_planned","to":"not an address","data":{}}`))
		require.Error(t, err)
	})
}

func TestNewComposer_MissingTemplates(t *testing.T) {
	_, err := NewComposer("planner@example.com", t.TempDir())
	require.Error(t, err)
}
