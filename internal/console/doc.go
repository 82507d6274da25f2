// Package console runs the interactive calendar menu.
//
// Commands are read one per line and accepted by name or menu number:
//   - 0 register: creates a user and prints the generated password and hash.
//   - 1 login: authenticates against the stored hash.
//   - 2 create-calendar: creates a calendar owned by the logged in user.
//   - 3 create-meeting: adds a meeting to one of the user's calendars.
//   - 4 delete-meeting: removes a meeting from one of the user's calendars.
//   - 5 delete-calendar: removes a calendar together with its meetings.
//   - 6 display-calendar: prints a calendar and its meetings.
//   - 7 logout, 8 exit.
//   - 9 export-calendar: writes a calendar to an .ics file.
//   - help: prints the menu.
//
// Calendar and meeting commands require a logged in session. Calendars are
// chosen by exact title among the user's own calendars.
package console
