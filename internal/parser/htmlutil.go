package parser

import (
	"strings"

	"golang.org/x/net/html"
)

// findSymbolTable returns the first table whose header row mentions SYMBOL.
func findSymbolTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" {
		if _, ok := headerColumns(n)["symbol"]; ok {
			return n
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if t := findSymbolTable(child); t != nil {
			return t
		}
	}
	return nil
}

// headerColumns maps canonical column keys to cell indexes by matching
// keywords in the table's th texts.
func headerColumns(table *html.Node) map[string]int {
	cols := make(map[string]int)
	var ths []*html.Node
	collectElements(table, "th", &ths)

	for i, th := range ths {
		text := strings.ToUpper(strings.TrimSpace(nodeText(th)))
		switch {
		case strings.Contains(text, "SYMBOL"):
			setOnce(cols, "symbol", i)
		case strings.Contains(text, "DATE"):
			setOnce(cols, "date", i)
		case strings.Contains(text, "OPEN"):
			setOnce(cols, "open", i)
		case strings.Contains(text, "HIGH"):
			setOnce(cols, "high", i)
		case strings.Contains(text, "LOW"):
			setOnce(cols, "low", i)
		case strings.Contains(text, "CLOSE"):
			setOnce(cols, "close", i)
		case strings.Contains(text, "VOLUME"):
			setOnce(cols, "volume", i)
		case strings.Contains(text, "SECTOR"):
			setOnce(cols, "sector", i)
		case strings.Contains(text, "COMPANY") || strings.Contains(text, "NAME"):
			setOnce(cols, "name", i)
		}
	}
	return cols
}

func setOnce(m map[string]int, key string, i int) {
	if _, ok := m[key]; !ok {
		m[key] = i
	}
}

// tableRows returns the data rows of a table, preferring tbody rows and
// otherwise taking any tr that contains td cells.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	if tbody := findElement(table, "tbody"); tbody != nil {
		collectElements(tbody, "tr", &rows)
		return rows
	}
	var all []*html.Node
	collectElements(table, "tr", &all)
	for _, tr := range all {
		var tds []*html.Node
		collectElements(tr, "td", &tds)
		if len(tds) > 0 {
			rows = append(rows, tr)
		}
	}
	return rows
}

func cellTexts(row *html.Node) []string {
	var tds []*html.Node
	collectElements(row, "td", &tds)
	out := make([]string, len(tds))
	for i, td := range tds {
		out[i] = nodeText(td)
	}
	return out
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// findByClass returns the first element carrying any of the given class names.
func findByClass(n *html.Node, classes ...string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key != "class" {
				continue
			}
			for _, have := range strings.Fields(attr.Val) {
				for _, want := range classes {
					if have == want {
						return n
					}
				}
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findByClass(child, classes...); found != nil {
			return found
		}
	}
	return nil
}

func collectElements(n *html.Node, tag string, out *[]*html.Node) {
	if n.Type == html.ElementNode && n.Data == tag {
		*out = append(*out, n)
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectElements(child, tag, out)
	}
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
