package handler

import (
	"zhukbot/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// sendable converts a response into telebot's Send arguments
func sendable(resp domain.Response) (interface{}, []interface{}) {
	switch layout := resp.Layout.(type) {
	case domain.PhotoWithCaption:
		return &tele.Photo{File: tele.FromURL(layout.ImageRef), Caption: layout.Caption}, nil
	case domain.ReplyButtons:
		return resp.Text, []interface{}{replyMarkup(layout.Rows)}
	case domain.InlineButtons:
		return resp.Text, []interface{}{inlineMarkup(layout.Buttons)}
	case domain.ContactRequest:
		return resp.Text, []interface{}{contactMarkup(layout.Label)}
	case domain.RemoveKeyboard:
		return resp.Text, []interface{}{&tele.ReplyMarkup{RemoveKeyboard: true}}
	}
	return resp.Text, nil
}

// replyMarkup builds a resized reply keyboard from rows of labels
func replyMarkup(rows [][]string) *tele.ReplyMarkup {
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

// inlineMarkup places each inline button on its own row
func inlineMarkup(buttons []domain.InlineButton) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(buttons))
	for _, btn := range buttons {
		rows = append(rows, markup.Row(markup.Data(btn.Label, btn.Payload)))
	}
	markup.Inline(rows...)
	return markup
}

func contactMarkup(label string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	markup.Reply(markup.Row(markup.Contact(label)))
	return markup
}
