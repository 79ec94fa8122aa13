package form

import (
	"fmt"
	"strconv"
	"strings"

	"lesson-ledger/internal/storage"
)

// FormatAmount prints a money value with the shortest exact representation,
// always keeping a fractional part: 2400 -> "2400.0", 612.5 -> "612.5".
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatConfirmation(sub storage.Submission) string {
	return fmt.Sprintf("✅ Запись сохранена!\n\n"+
		"Чат: %s\n"+
		"Ученик: %s\n"+
		"Сотрудник: %s\n"+
		"Дата занятия: %s\n"+
		"Сумма оплаты: %s ₽",
		sub.ChatID, sub.StudentName, sub.EmployeeName, sub.NextLesson, FormatAmount(sub.Total))
}

func formatAdminCopy(sub storage.Submission) string {
	return fmt.Sprintf("📩 Новая запись от сотрудника:\n"+
		"Чат: %s\n"+
		"Ученик: %s\n"+
		"Сотрудник: %s\n"+
		"Дата занятия: %s\n"+
		"Часы: %d\n"+
		"сумму оплаты от ученика: %s\n"+
		"💰 Итого: %s ₽",
		sub.ChatID, sub.StudentName, sub.EmployeeName, sub.NextLesson, sub.Hours, FormatAmount(sub.Rate), FormatAmount(sub.Total))
}
