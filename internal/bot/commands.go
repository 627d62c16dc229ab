package bot

import (
	telebot "gopkg.in/telebot.v3"
)

// Command constants for Telegram bot commands.
const (
	CommandStart   = "/start"
	CommandHelp    = "/help"
	CommandDaily   = "/daily"
	CommandEBal    = "/ebal"
	CommandSBal    = "/sbal"
	CommandEAdd    = "/eadd"
	CommandERemove = "/eremove"
	CommandSAdd    = "/sadd"
	CommandSRemove = "/sremove"
)

// commandMenu is published to Telegram so clients can autocomplete commands.
var commandMenu = []telebot.Command{
	{Text: "daily", Description: "Napi jutalom igénylése"},
	{Text: "ebal", Description: "Economy egyenleg"},
	{Text: "sbal", Description: "ShulkCredit egyenleg"},
	{Text: "eadd", Description: "Economy pénz hozzáadása (admin)"},
	{Text: "eremove", Description: "Economy pénz levonása (admin)"},
	{Text: "sadd", Description: "ShulkCredit hozzáadása (admin)"},
	{Text: "sremove", Description: "ShulkCredit levonása (admin)"},
	{Text: "help", Description: "Súgó"},
}
