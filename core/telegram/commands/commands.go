// Package commands describes slash commands registered with the bot.
package commands

import tele "gopkg.in/telebot.v4"

// Command is a slash command handler plus the metadata shown in the Telegram menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are hidden from the menu and gated by the owner check.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}
