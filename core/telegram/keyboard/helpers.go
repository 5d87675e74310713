// Package keyboard builds Telegram reply markups.
package keyboard

import tele "gopkg.in/telebot.v4"

// ReplyButtons builds a resized reply keyboard from rows of labels.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// Menu lays labels out one per row and hides the keyboard once a button
// is pressed.
func Menu(labels ...string) *tele.ReplyMarkup {
	rows := make([][]string, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []string{l})
	}
	markup := ReplyButtons(rows...)
	markup.OneTimeKeyboard = true
	return markup
}
