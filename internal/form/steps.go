package form

import (
	"math"
	"strconv"
	"strings"

	"lesson-ledger/internal/session"
)

// Keys of the collected fields.
const (
	FieldChatID       = "chat_id"
	FieldStudentName  = "student_name"
	FieldEmployeeName = "employee_name"
	FieldNextLesson   = "next_lesson"
	FieldHours        = "hours"
	FieldRate         = "rate"
)

type step struct {
	field string
	// parse returns the normalized value and whether the input is acceptable.
	parse func(string) (string, bool)
}

var steps = map[session.State]step{
	session.AwaitingChatID:       {field: FieldChatID, parse: acceptText},
	session.AwaitingStudentName:  {field: FieldStudentName, parse: acceptText},
	session.AwaitingEmployeeName: {field: FieldEmployeeName, parse: acceptText},
	session.AwaitingNextLesson:   {field: FieldNextLesson, parse: acceptText},
	session.AwaitingHours:        {field: FieldHours, parse: parseHours},
	session.AwaitingRate:         {field: FieldRate, parse: parseRate},
}

// prompts are sent when a chat enters the state.
var prompts = map[session.State]string{
	session.AwaitingChatID:       "Введите номер чата:",
	session.AwaitingStudentName:  "Введите имя ученика:",
	session.AwaitingEmployeeName: "Введите ваше фио:",
	session.AwaitingNextLesson:   "Введите дату следующего занятия (например, 10.10.2025):",
	session.AwaitingHours:        "Введите количество часов:",
	session.AwaitingRate:         "Введите оплату за 1 час:",
}

func acceptText(s string) (string, bool) { return s, true }

// MaxHours bounds a single entry so that sums and the company-rate product
// stay within int64 and float64 range.
const MaxHours = 1_000_000

// parseHours accepts an integer in [0, MaxHours] written with digits only.
func parseHours(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n > MaxHours {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

// parseRate accepts a finite non-negative real; a decimal comma is allowed.
func parseRate(s string) (string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', -1, 64), true
}
