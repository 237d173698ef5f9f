package render

import (
	"bytes"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

// Node builds the region fragment for m.
func Node(m DisplayModel) gomponents.Node {
	switch m.Kind {
	case KindTable:
		rows := make([]gomponents.Node, 0, len(m.Metrics)+1)
		rows = append(rows, html.Tr(
			html.Th(gomponents.Text("Metric")),
			html.Th(gomponents.Text("Value")),
		))
		for i := range m.Metrics {
			rows = append(rows, html.Tr(
				html.Td(gomponents.Text(m.Metrics[i].Label)),
				html.Td(gomponents.Text(m.Metrics[i].Value)),
			))
		}
		return html.Table(gomponents.Group(rows))
	case KindFailure:
		return html.P(html.Class("error"), gomponents.Text(m.Message))
	default:
		return html.P(gomponents.Text(m.Message))
	}
}

// HTML renders the region fragment to a string.
func HTML(m DisplayModel) (string, error) {
	var buf bytes.Buffer
	if err := Node(m).Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
