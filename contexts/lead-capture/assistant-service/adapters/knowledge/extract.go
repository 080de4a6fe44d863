package knowledge

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractText flattens an HTML document to visible text. Script, style and
// similar non-content subtrees are skipped entirely.
func ExtractText(pageHTML string) string {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}

	var b strings.Builder
	walkText(doc, &b, 0)
	return strings.Join(strings.Fields(b.String()), " ")
}

func walkText(n *html.Node, b *strings.Builder, depth int) {
	if depth > 50 {
		return
	}

	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			b.WriteString(text)
			b.WriteString(" ")
		}
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg":
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, b, depth+1)
	}
}

// chunkText splits text into overlapping windows on word boundaries. Overlap
// keeps sentences that straddle a cut retrievable from either side.
func chunkText(text string, size int, overlap int) []string {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	if len(text) <= size {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	words := strings.Fields(text)
	var chunks []string
	var window []string
	length := 0
	fresh := false

	flush := func() {
		chunks = append(chunks, strings.Join(window, " "))

		// Retain trailing words up to the overlap budget.
		kept := 0
		start := len(window)
		for start > 0 && kept+len(window[start-1])+1 <= overlap {
			kept += len(window[start-1]) + 1
			start--
		}
		window = append([]string(nil), window[start:]...)
		length = kept
		fresh = false
	}

	for _, word := range words {
		if length+len(word)+1 > size && fresh {
			flush()
		}
		window = append(window, word)
		length += len(word) + 1
		fresh = true
	}
	if fresh {
		chunks = append(chunks, strings.Join(window, " "))
	}
	return chunks
}
