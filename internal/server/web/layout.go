package web

import (
	"github.com/dmitrijs2005/rabetweb/internal/server/models"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const siteName = "Rabet"

func document(title string, body ...Node) Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(Text(title+" | "+siteName)),
				Link(Rel("icon"), Href("data:,")),
				Link(Rel("stylesheet"), Href("https://cdn.jsdelivr.net/npm/@primer/css@22.1.0/dist/primer.min.css")),
			),
			Body(Group(body)),
		),
	)
}

// publicPage is the site chrome for visitors.
func publicPage(title string, body ...Node) Node {
	return document(title,
		Header(Class("Header"),
			Div(Class("Header-item Header-item--full"),
				A(Href("/"), Class("Header-link"), Strong(Text(siteName))),
			),
			Div(Class("Header-item"), A(Href("/contact"), Class("Header-link"), Text("Contact"))),
			Div(Class("Header-item"), A(Href("/signin"), Class("Header-link"), Text("Sign in"))),
			Div(Class("Header-item"), A(Href("/signup"), Class("Header-link"), Text("Sign up"))),
		),
		Main(Class("container-md p-4"), Group(body)),
	)
}

type navItem struct {
	Label string
	Href  string
	Key   string
}

var dashboardNav = []navItem{
	{Label: "Overview", Href: "/dashboard", Key: "overview"},
	{Label: "Users", Href: "/dashboard/users", Key: "users"},
	{Label: "Inbox", Href: "/dashboard/inbox", Key: "inbox"},
	{Label: "System", Href: "/dashboard/system", Key: "system"},
}

func dashboardPage(title, active string, p *models.Principal, body ...Node) Node {
	nav := make([]Node, 0, len(dashboardNav))
	for _, item := range dashboardNav {
		className := "menu-item"
		if item.Key == active {
			className += " selected"
		}
		nav = append(nav, A(Href(item.Href), Class(className), Text(item.Label)))
	}

	return document(title,
		Header(Class("Header"),
			Div(Class("Header-item Header-item--full"),
				A(Href("/"), Class("Header-link"), Strong(Text(siteName+" dashboard"))),
			),
			Div(Class("Header-item"), Span(Text(p.Email+" ("+string(p.Role)+")"))),
			Div(Class("Header-item"),
				Button(Type("button"), Class("btn btn-sm"), ID("signout"), Text("Sign out")),
			),
		),
		Main(Class("d-flex"),
			Nav(Class("menu m-3"), Attr("aria-label", "Dashboard"), Group(nav)),
			Div(Class("flex-auto p-3"), H1(Class("h2 mb-3"), Text(title)), Group(body)),
		),
		Script(Raw(signOutScript)),
	)
}

func errorPage(msg string) Node {
	return publicPage("Error", Div(Class("flash flash-error"), Text(msg)))
}

func formField(label, name, kind string, extra ...Node) Node {
	return Div(Class("form-group"),
		Div(Class("form-group-header"), Label(For(name), Text(label))),
		Div(Class("form-group-body"),
			Input(Class("form-control"), Type(kind), ID(name), Name(name), Required(), Group(extra)),
		),
	)
}

// formError is where the page scripts put API errors.
func formError() Node {
	return Div(ID("form-error"), Class("flash flash-error mb-3"), Attr("hidden", ""))
}
