package console

import (
	"context"
	"errors"

	"github.com/example/calendar-console/internal/application"
	"github.com/example/calendar-console/internal/session"
)

func (c *Controller) register(ctx context.Context) error {
	username, err := c.prompt.Ask("Enter your username: ")
	if err != nil {
		return err
	}

	result, err := c.services.Users.CreateUser(ctx, application.CreateUserParams{Username: username})
	if err != nil {
		return err
	}
	c.view.Success("User registered.")
	c.view.User(result)
	return nil
}

func (c *Controller) login(ctx context.Context) error {
	if c.session.IsLoggedIn() {
		c.view.Warning("Already logged in. Proceed with other operations.")
		return nil
	}

	username, err := c.prompt.Ask("Username: ")
	if err != nil {
		return err
	}
	password, err := c.prompt.Ask("Password: ")
	if err != nil {
		return err
	}

	err = c.session.Login(ctx, c.services.Users, username, password)
	switch {
	case err == nil:
		c.view.Success("Login successful. Welcome %s", c.session.Username())
		return nil
	case errors.Is(err, application.ErrInvalidCredentials):
		c.view.Error("Login failed. Check your username and password.")
		return nil
	case errors.Is(err, application.ErrNotFound):
		c.view.Warning("User %q not found.", username)
		return nil
	case errors.Is(err, session.ErrTooManyAttempts):
		c.view.Warning("Too many failed login attempts. Try again later.")
		return nil
	default:
		return err
	}
}

func (c *Controller) logout(ctx context.Context) error {
	if err := c.session.Logout(ctx); err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			c.view.Warning("You are not logged in.")
			return nil
		}
		return err
	}
	c.view.Message("Logged out.")
	return nil
}

func (c *Controller) createCalendar(ctx context.Context) error {
	username, err := c.session.RequireLogin()
	if err != nil {
		return err
	}

	title, err := c.prompt.Ask("Enter calendar title: ")
	if err != nil {
		return err
	}

	calendar, err := c.services.Calendars.CreateCalendar(ctx, title, username)
	if err != nil {
		return err
	}
	c.view.Success("Calendar created successfully.")
	c.view.Calendar(calendar)
	return nil
}

// chooseCalendar lists the user's calendars and asks for one by title.
// ok is false when the user has none or the title matches none.
func (c *Controller) chooseCalendar(ctx context.Context) (calendar application.Calendar, ok bool, err error) {
	username, err := c.session.RequireLogin()
	if err != nil {
		return application.Calendar{}, false, err
	}

	calendars, err := c.services.Calendars.FindCalendarsByUsername(ctx, username)
	if err != nil {
		return application.Calendar{}, false, err
	}
	if len(calendars) == 0 {
		c.view.Warning("No calendar found.")
		return application.Calendar{}, false, nil
	}
	c.view.Message("Calendars list:")
	c.view.CalendarTitles(calendars)

	title, err := c.prompt.Ask("Choose and enter a calendar title: ")
	if err != nil {
		return application.Calendar{}, false, err
	}

	calendar, ok, err = c.services.Calendars.FindByTitleAndUsername(ctx, title, username)
	if err != nil {
		return application.Calendar{}, false, err
	}
	if !ok {
		c.view.Warning("Calendar not found. Enter the exact calendar title.")
	}
	return calendar, ok, nil
}

func (c *Controller) createMeeting(ctx context.Context) error {
	calendar, ok, err := c.chooseCalendar(ctx)
	if err != nil || !ok {
		return err
	}

	c.view.Message("Enter meeting details to create:")
	title, err := c.prompt.Ask("Title: ")
	if err != nil {
		return err
	}
	startValue, err := c.prompt.Ask("Start (YYYY-MM-DD HH:MM): ")
	if err != nil {
		return err
	}
	endValue, err := c.prompt.Ask("End (YYYY-MM-DD HH:MM): ")
	if err != nil {
		return err
	}

	start, err := ParseTime("start", startValue, c.loc)
	if err != nil {
		return err
	}
	end, err := ParseTime("end", endValue, c.loc)
	if err != nil {
		return err
	}

	meeting, err := c.services.Meetings.CreateMeeting(ctx, application.MeetingInput{
		Title:      title,
		Start:      start,
		End:        end,
		CalendarID: calendar.ID,
	})
	if err != nil {
		return err
	}
	c.view.Success("Meeting created successfully.")
	c.view.Meetings([]application.Meeting{meeting})
	return nil
}

func (c *Controller) deleteMeeting(ctx context.Context) error {
	calendar, ok, err := c.chooseCalendar(ctx)
	if err != nil || !ok {
		return err
	}

	meetings, err := c.services.Meetings.FindAllMeetingsByCalendarID(ctx, calendar.ID)
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		c.view.Warning("No meetings available to delete.")
		return nil
	}
	c.view.MeetingIndex(meetings)

	value, err := c.prompt.Ask("Enter meeting id to delete: ")
	if err != nil {
		return err
	}
	meetingID, err := ParseID("id", value)
	if err != nil {
		return err
	}

	deleted, err := c.services.Meetings.DeleteMeetingInCalendar(ctx, calendar.ID, meetingID)
	if err != nil {
		return err
	}
	if !deleted {
		c.view.Error("Failed to delete meeting. Check the meeting id.")
		return nil
	}

	c.view.Success("Meeting deleted successfully.")
	remaining, err := c.services.Meetings.FindAllMeetingsByCalendarID(ctx, calendar.ID)
	if err != nil {
		return err
	}
	c.view.Message("Meeting list after deleting:")
	c.view.Meetings(remaining)
	return nil
}

func (c *Controller) deleteCalendar(ctx context.Context) error {
	calendar, ok, err := c.chooseCalendar(ctx)
	if err != nil || !ok {
		return err
	}

	result, err := c.services.Calendars.DeleteCalendar(ctx, calendar.ID)
	if err != nil {
		return err
	}
	c.view.Success("Calendar deleted successfully.")
	c.view.Success("%d meeting(s) in this calendar were also deleted.", result.MeetingsDeleted)

	remaining, err := c.services.Calendars.FindCalendarsByUsername(ctx, calendar.OwnerUsername)
	if err != nil {
		return err
	}
	c.view.Message("Calendars list after deleting:")
	if len(remaining) == 0 {
		c.view.Warning("No calendar found.")
		return nil
	}
	c.view.CalendarTitles(remaining)
	return nil
}

func (c *Controller) displayCalendar(ctx context.Context) error {
	calendar, ok, err := c.chooseCalendar(ctx)
	if err != nil || !ok {
		return err
	}

	meetings, err := c.services.Meetings.FindAllMeetingsByCalendarID(ctx, calendar.ID)
	if err != nil {
		return err
	}
	c.view.Message("Calendar details:")
	c.view.Calendar(calendar)
	c.view.Meetings(meetings)
	return nil
}

func (c *Controller) exportCalendar(ctx context.Context) error {
	calendar, ok, err := c.chooseCalendar(ctx)
	if err != nil || !ok {
		return err
	}

	meetings, err := c.services.Meetings.FindAllMeetingsByCalendarID(ctx, calendar.ID)
	if err != nil {
		return err
	}
	path, err := c.exporter.Export(calendar, meetings)
	if err != nil {
		return err
	}
	c.view.Success("Exported %d meeting(s) to %s", len(meetings), path)
	return nil
}
