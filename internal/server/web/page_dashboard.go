package web

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/server/auth"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func overviewPage(p *models.Principal, users, unread int) Node {
	return dashboardPage("Overview", "overview", p,
		Div(Class("d-flex gap-3"),
			statCard("Users", fmt.Sprint(users), "/dashboard/users"),
			statCard("Unread messages", fmt.Sprint(unread), "/dashboard/inbox?view=new"),
		),
	)
}

func statCard(label, value, href string) Node {
	return A(Href(href), Class("Box p-3 color-fg-default no-underline"),
		Div(Class("f6 color-fg-muted"), Text(label)),
		Div(Class("f1 text-bold"), Text(value)),
	)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func displayName(u *models.Principal) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// usersPage lists principals. Role changes and deletion are only offered to
// administrators; the API enforces the same rule.
func usersPage(p *models.Principal, users []*models.Principal) Node {
	admin := auth.Allows(p.Role, models.RoleAdministrator)

	rows := make([]Node, 0, len(users))
	for _, u := range users {
		status := "Active"
		if u.Disabled {
			status = "Disabled"
		}
		rows = append(rows, Tr(Data("user-id", u.ID),
			Td(Text(displayName(u))),
			Td(Text(u.Email)),
			Td(If(admin, roleSelect(u)), If(!admin, Text(string(u.Role)))),
			Td(Text(status)),
			Td(Text(formatTime(u.LastLogin))),
			Td(
				Button(Type("button"), Class("btn btn-sm"), Data("action", "toggle"),
					Data("disabled", fmt.Sprint(!u.Disabled)),
					If(u.Disabled, Text("Enable")), If(!u.Disabled, Text("Disable")),
				),
				If(admin, Button(Type("button"), Class("btn btn-sm btn-danger ml-2"), Data("action", "delete"), Text("Delete"))),
			),
		))
	}

	return dashboardPage("Users", "users", p,
		Table(Class("width-full"), ID("users"),
			THead(Tr(Th(Text("Name")), Th(Text("Email")), Th(Text("Role")), Th(Text("Status")), Th(Text("Last login")), Th())),
			TBody(Group(rows)),
		),
		Script(Raw(usersScript)),
	)
}

var allRoles = []models.Role{models.RoleUser, models.RoleModerator, models.RoleAdministrator}

func roleSelect(u *models.Principal) Node {
	opts := make([]Node, 0, len(allRoles))
	for _, r := range allRoles {
		opts = append(opts, Option(Value(string(r)), If(r == u.Role, Selected()), Text(string(r))))
	}
	return Select(Class("form-select select-sm"), Data("action", "role"), Group(opts))
}

var inboxViews = []models.MessageView{models.ViewAll, models.ViewNew, models.ViewRead, models.ViewReplied, models.ViewArchived}

func inboxPage(p *models.Principal, view models.MessageView, list []*models.Message) Node {
	tabs := make([]Node, 0, len(inboxViews))
	for _, v := range inboxViews {
		className := "UnderlineNav-item"
		if v == view {
			className += " selected"
		}
		tabs = append(tabs, A(Href("/dashboard/inbox?view="+string(v)), Class(className), Text(strings.ToUpper(string(v[:1]))+string(v[1:]))))
	}

	rows := make([]Node, 0, len(list))
	for _, m := range list {
		rows = append(rows, Tr(Data("message-id", m.ID),
			Td(Text(m.FullName), Div(Class("f6 color-fg-muted"), Text(m.Email))),
			Td(Strong(Text(m.Subject)), Div(Class("f6"), Text(m.Body))),
			Td(Text(string(m.Status))),
			Td(Text(formatTime(&m.CreatedAt))),
			Td(
				Button(Type("button"), Class("btn btn-sm"), Data("action", "read"), Text("Mark read")),
				Button(Type("button"), Class("btn btn-sm ml-2"), Data("action", "replied"), Text("Mark replied")),
				Button(Type("button"), Class("btn btn-sm ml-2"), Data("action", "archive"),
					Data("archived", fmt.Sprint(!m.IsArchived)),
					If(m.IsArchived, Text("Unarchive")), If(!m.IsArchived, Text("Archive")),
				),
				Button(Type("button"), Class("btn btn-sm btn-danger ml-2"), Data("action", "delete"), Text("Delete")),
			),
		))
	}

	var body Node = Table(Class("width-full"), ID("messages"),
		THead(Tr(Th(Text("From")), Th(Text("Message")), Th(Text("Status")), Th(Text("Received")), Th())),
		TBody(Group(rows)),
	)
	if len(list) == 0 {
		body = P(Class("color-fg-muted"), Text("No messages."))
	}

	return dashboardPage("Inbox", "inbox", p,
		P(Text("Unread: "), Strong(ID("unread-count"), Text("…"))),
		Nav(Class("UnderlineNav mb-3"), Div(Class("UnderlineNav-body"), Group(tabs))),
		body,
		Script(Raw(inboxScript)),
	)
}

func systemPage(p *models.Principal, rep *models.DependencyReport) Node {
	rows := make([]Node, 0, len(rep.Dependencies))
	for _, d := range rep.Dependencies {
		latest := d.Latest
		state := "Up to date"
		switch {
		case d.Error != "":
			latest = "unknown"
			state = d.Error
		case d.UpdateAvailable:
			state = "Update available"
		}
		rows = append(rows, Tr(
			Td(Code(Text(d.Module))),
			Td(Text(d.Type)),
			Td(Text(d.Current)),
			Td(Text(latest)),
			Td(Text(state)),
		))
	}

	return dashboardPage("System", "system", p,
		P(Class("color-fg-muted"), Text("Checked at "+rep.CheckedAt.UTC().Format(time.RFC1123))),
		Table(Class("width-full"),
			THead(Tr(Th(Text("Module")), Th(Text("Type")), Th(Text("Current")), Th(Text("Latest")), Th(Text("Status")))),
			TBody(Group(rows)),
		),
	)
}
