package server

import (
	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"affiliateScope/internal/render"
)

func dashboardPage(wallet, alert string, view render.DisplayModel) gomponents.Node {
	return html.Doctype(html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text("THORChain Affiliate Stats")),
		),
		html.Body(
			html.H1(gomponents.Text("THORChain Affiliate Stats")),
			gomponents.If(alert != "", html.P(html.Class("alert"), gomponents.Text(alert))),
			html.Form(
				html.Method("post"),
				html.Action("/fetch"),
				html.Input(
					html.Type("text"),
					html.ID("wallet-address"),
					html.Name("wallet"),
					html.Placeholder("Wallet address"),
					html.Value(wallet),
				),
				html.Button(html.Type("submit"), html.ID("fetch-data"), gomponents.Text("Fetch Data")),
			),
			html.Div(html.ID("result-table"), render.Node(view)),
		),
	))
}
