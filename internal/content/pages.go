package content

func init() {
	siteSchema = &Schema{
		Key:    SiteKey,
		Prefix: SiteKey,
		Fields: []Field{
			Text("name").Require(),
			Text("tagline"),
			Object("footer",
				Text("description"),
				Object("visit", Text("title"), Lines("lines")),
				Object("contact",
					Text("title"),
					Collection("lines", "line", Text("label"), URL("url")),
				),
			),
			Object("flags", Flag("show_admin_border")),
			Object("colors",
				Text("primary"),
				Text("primary_dark"),
				Text("accent"),
				Text("background"),
				Text("text"),
				Text("muted"),
			),
		},
	}

	meta := Object("meta", Text("title"), Text("description"))
	card := []Field{Text("title"), Text("description"), Image("image"), Text("image_alt")}
	cardWithBullets := []Field{Text("title"), Text("description"), Lines("bullets"), Image("image"), Text("image_alt")}

	register(NewSchema("home",
		meta,
		Object("hero",
			Text("badge"),
			Text("title").Require(),
			Text("description"),
			Text("cta_text"),
			URL("cta_link"),
			Image("image"),
			Text("image_alt"),
		),
		Object("what_we_print", Text("title"), Collection("items", "item", cardWithBullets...)),
		Object("why_choose", Text("title"), Collection("items", "item", card...)),
		Object("testimonials", Text("title"), Collection("items", "item", Text("quote"), Text("author"))),
	))

	register(NewSchema("services",
		meta,
		Object("hero", Text("badge"), Text("title").Require(), Text("description")),
		Object("capabilities", Text("title"), Collection("items", "item", cardWithBullets...)),
		Object("bundles", Text("title"), Collection("items", "item",
			Text("title"), Text("description"), Lines("bullets"), Text("price"), Image("image"), Text("image_alt"),
		)),
		Object("process",
			Text("title"),
			Collection("steps", "step", card...),
			Object("cta", Text("title"), Text("description"), Text("text"), URL("link")),
		),
	))

	register(NewSchema("contact",
		meta,
		Object("hero", Text("badge"), Text("title").Require(), Text("description")),
		Object("studio",
			Text("visit_title"),
			Lines("address"),
			Text("hours_title"),
			Lines("hours"),
			Text("phone_title"),
			Text("phone"),
			URL("phone_href"),
			Text("email_title"),
			Text("email"),
		),
		Object("form",
			Text("title"),
			Text("submit_text"),
			Collection("fields", "field", Text("label"), Text("name"), Text("type"), Text("placeholder")),
		),
		Object("about", Text("title"), Text("description"), Collection("cards", "card", Text("title"), Text("description"))),
	))

	register(NewSchema("store",
		meta,
		Object("hero", Text("badge"), Text("title").Require(), Text("description"), Image("image"), Text("image_alt")),
		Object("products", Text("title"), Collection("items", "item",
			Text("title"), Text("description"), Text("price"), URL("link"), Image("image"), Text("image_alt"),
		)),
		Object("notice", Text("title"), Text("description")),
	))
}
