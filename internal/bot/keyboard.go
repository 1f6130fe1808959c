package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tazhate/couplebot/internal/domain"
)

// Main menu keyboard
func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💝 기념일", "menu:anniv"),
			tgbotapi.NewInlineKeyboardButtonData("⏳ 다가오는 날", "menu:upcoming"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 오늘", "menu:today"),
			tgbotapi.NewInlineKeyboardButtonData("🗓 이번 달", "menu:month"),
		),
	)
}

// Filter tab keyboard, the active tab is marked
func tabKeyboard(active domain.FilterTab) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, tab := range domain.FilterTabs {
		label := tab.Label()
		if tab == active {
			label = "• " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "tab:"+string(tab)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Month navigation keyboard
func monthKeyboard(year int, month int) tgbotapi.InlineKeyboardMarkup {
	prevY, prevM := year, month-1
	if prevM < 1 {
		prevY, prevM = year-1, 12
	}
	nextY, nextM := year, month+1
	if nextM > 12 {
		nextY, nextM = year+1, 1
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀", fmt.Sprintf("month:%04d-%02d", prevY, prevM)),
			tgbotapi.NewInlineKeyboardButtonData("▶", fmt.Sprintf("month:%04d-%02d", nextY, nextM)),
		),
	)
}

// Single event keyboard
func eventKeyboard(eventID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 삭제", fmt.Sprintf("del:%d", eventID)),
		),
	)
}

// Favorite category keyboard
func favoriteCategoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range domain.FavoriteCategories {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Label(), "likes:"+string(c)))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
