package web

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func homePage() Node {
	return publicPage("Home",
		H1(Text("Welcome to "+siteName)),
		P(Class("f3 color-fg-muted"), Text("Build, publish and manage your site content in one place.")),
		P(A(Href("/contact"), Class("btn btn-primary"), Text("Get in touch"))),
	)
}

func signInPage() Node {
	return publicPage("Sign in",
		H1(Text("Sign in")),
		formError(),
		Form(ID("signin-form"),
			formField("Email", "email", "email", AutoComplete("email")),
			formField("Password", "password", "password", AutoComplete("current-password")),
			Button(Type("submit"), Class("btn btn-primary"), Text("Sign in")),
		),
		P(Class("mt-3"), Text("No account yet? "), A(Href("/signup"), Text("Sign up"))),
		Script(Raw(signInScript)),
	)
}

func signUpPage() Node {
	return publicPage("Sign up",
		H1(Text("Create an account")),
		formError(),
		Form(ID("signup-form"),
			formField("First name", "firstName", "text"),
			formField("Last name", "lastName", "text"),
			formField("Email", "email", "email", AutoComplete("email")),
			formField("Password", "password", "password", AutoComplete("new-password"), MinLength("6")),
			Button(Type("submit"), Class("btn btn-primary"), Text("Sign up")),
		),
		Script(Raw(signUpScript)),
	)
}

func contactPage() Node {
	return publicPage("Contact",
		H1(Text("Contact us")),
		formError(),
		Div(ID("form-success"), Class("flash flash-success mb-3"), Attr("hidden", "")),
		Form(ID("contact-form"),
			formField("Full name", "fullName", "text"),
			formField("Email", "email", "email"),
			formField("Subject", "subject", "text"),
			Div(Class("form-group"),
				Div(Class("form-group-header"), Label(For("message"), Text("Message"))),
				Div(Class("form-group-body"),
					Textarea(Class("form-control"), ID("message"), Name("message"), Required()),
				),
			),
			Button(Type("submit"), Class("btn btn-primary"), Text("Send")),
		),
		Script(Raw(contactScript)),
	)
}
