package web

import (
	"embed"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templates embed.FS

// NewEngine returns the HTML view engine over the embedded templates.
// pathEscape encodes a value as a single path segment, for recipe names
// that contain "/" or "?".
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err) // The embedded tree always contains templates/
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("pathEscape", url.PathEscape)
	return engine
}
