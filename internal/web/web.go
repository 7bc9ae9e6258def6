// Package web holds the HTML pages rendered for browser clients.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/baylot/raffle-api/internal/domain"
)

//go:embed templates/*.html
var files embed.FS

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"flag":    domain.FlagEmoji,
		"country": domain.CountryName,
		"date": func(t time.Time) string {
			return t.UTC().Format("02 Jan 2006 15:04 MST")
		},
	}
}

// Templates parses every embedded page. Each page is addressed by its file name, e.g. "ticket.html".
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(FuncMap()).ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS -> %w", err)
	}

	return tmpl, nil
}
