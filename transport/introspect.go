package transport

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/circuitsgo/circuits"
)

// RenderTree writes a tiny read-only HTML page listing every channel in
// root's subtree and how many handlers it declares, for operators
// inspecting a running tree. The generated markup is parsed and
// re-serialized through html.Parse/html.Render so it is always
// well-formed, the way the teacher's HTTP layer post-processes rendered
// markup.
func RenderTree(w io.Writer, root *circuits.Component) error {
	var raw bytes.Buffer
	raw.WriteString("<!doctype html><html><body><ul>")
	walkTree(&raw, root)
	raw.WriteString("</ul></body></html>")

	doc, err := html.Parse(&raw)
	if err != nil {
		return fmt.Errorf("transport: parse introspection page: %w", err)
	}
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("transport: render introspection page: %w", err)
	}
	return nil
}

func walkTree(w io.Writer, c *circuits.Component) {
	fmt.Fprintf(w, "<li>%s (%d handlers)", html.EscapeString(c.Channel()), c.HandlerCount())
	children := c.Children()
	if len(children) > 0 {
		w.Write([]byte("<ul>"))
		for _, child := range children {
			walkTree(w, child)
		}
		w.Write([]byte("</ul>"))
	}
	w.Write([]byte("</li>"))
}
