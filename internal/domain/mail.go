package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const MailTypeShiftPlanned = "shift_planned"

type ShiftPlannedMailData struct {
	Name      string   `json:"name"`
	WeekStart string   `json:"weekStart"`
	WeekEnd   string   `json:"weekEnd"`
	Days      []string `json:"days"`
}
