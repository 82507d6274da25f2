package console

import (
	"strconv"
	"strings"
)

// Command names.
const (
	CommandRegister        = "register"
	CommandLogin           = "login"
	CommandCreateCalendar  = "create-calendar"
	CommandCreateMeeting   = "create-meeting"
	CommandDeleteMeeting   = "delete-meeting"
	CommandDeleteCalendar  = "delete-calendar"
	CommandDisplayCalendar = "display-calendar"
	CommandLogout          = "logout"
	CommandExit            = "exit"
	CommandExportCalendar  = "export-calendar"
	CommandHelp            = "help"
)

// Command describes one menu entry. Index is -1 for entries without a number.
type Command struct {
	Name          string
	Index         int
	Description   string
	RequiresLogin bool
}

var commands = []Command{
	{Name: CommandRegister, Index: 0, Description: "Register a new user"},
	{Name: CommandLogin, Index: 1, Description: "Log in"},
	{Name: CommandCreateCalendar, Index: 2, Description: "Create a calendar", RequiresLogin: true},
	{Name: CommandCreateMeeting, Index: 3, Description: "Create a meeting", RequiresLogin: true},
	{Name: CommandDeleteMeeting, Index: 4, Description: "Delete a meeting", RequiresLogin: true},
	{Name: CommandDeleteCalendar, Index: 5, Description: "Delete a calendar and its meetings", RequiresLogin: true},
	{Name: CommandDisplayCalendar, Index: 6, Description: "Display a calendar", RequiresLogin: true},
	{Name: CommandLogout, Index: 7, Description: "Log out"},
	{Name: CommandExit, Index: 8, Description: "Exit"},
	{Name: CommandExportCalendar, Index: 9, Description: "Export a calendar to iCalendar", RequiresLogin: true},
	{Name: CommandHelp, Index: -1, Description: "Show this menu"},
}

var aliases = map[string]string{
	"?":    CommandHelp,
	"quit": CommandExit,
}

// Commands returns the menu in display order.
func Commands() []Command {
	return append([]Command(nil), commands...)
}

// ParseCommand resolves a command by name, alias, or menu number.
func ParseCommand(input string) (Command, bool) {
	value := strings.ToLower(strings.TrimSpace(input))
	if value == "" {
		return Command{}, false
	}
	if target, ok := aliases[value]; ok {
		value = target
	}

	if index, err := strconv.Atoi(value); err == nil {
		for _, cmd := range commands {
			if cmd.Index >= 0 && cmd.Index == index {
				return cmd, true
			}
		}
		return Command{}, false
	}

	value = strings.ReplaceAll(value, "_", "-")
	for _, cmd := range commands {
		if cmd.Name == value {
			return cmd, true
		}
	}
	return Command{}, false
}
