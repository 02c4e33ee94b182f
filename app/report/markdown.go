// Package report renders archived runs as documents for people to read.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Semior001/newsharvest/app/store"
)

var markdownTmpl = template.Must(template.New("markdown").Funcs(template.FuncMap{
	"join":       strings.Join,
	"hasContent": func(s string) bool { return s != "" && s != store.ContentNotExtracted },
	"hasDate":    func(s string) bool { return s != "" && s != store.DateNotExtracted },
}).Parse(`
{{- if not .Records -}}
No news articles found for "{{ join .Queries ", " }}"
{{ else -}}
# News Articles: {{ join .Queries ", " }}
Country: {{ .Market }}
Total articles: {{ len .Records }}
Extracted: {{ .FinishedAt.UTC.Format "2006-01-02T15:04:05Z07:00" }}

---
{{ range .Records }}
## {{ .Title }}

**Company:** {{ .Company }}
{{- if .Source }}
**Source:** {{ .Source }}
{{- end }}
{{- if hasDate .PublishedAt }}
**Published:** {{ .PublishedAt }}
{{- end }}
**URL:** {{ .URL }}
{{ if .Snippet }}
> {{ .Snippet }}
{{ end }}
{{ if hasContent .Content }}{{ .Content }}{{ else }}*Content could not be extracted*{{ end }}

---
{{ end -}}
{{ end -}}
`))

// Markdown writes the run with all its records as a markdown document.
func Markdown(w io.Writer, run store.Run) error {
	if err := markdownTmpl.Execute(w, run); err != nil {
		return fmt.Errorf("execute markdown template for run %s: %w", run.ID, err)
	}
	return nil
}
