package reporter

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/pthm/widgetlint/internal/report"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const page = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 72rem; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
table { border-collapse: collapse; width: 100%%; margin-bottom: 1.5rem; }
th, td { border: 1px solid #d0d7de; padding: .35rem .6rem; text-align: left; vertical-align: top; }
th { background: #f6f8fa; }
code { background: #f6f8fa; padding: 0 .25rem; border-radius: 4px; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTMLReporter outputs the report as a standalone HTML page
type HTMLReporter struct {
	w  io.Writer
	md goldmark.Markdown
}

// NewHTMLReporter creates a new HTML reporter
func NewHTMLReporter(w io.Writer) *HTMLReporter {
	return &HTMLReporter{
		w:  w,
		md: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Report renders the Markdown report to HTML and wraps it in a page
func (r *HTMLReporter) Report(rep *report.Report) error {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(Markdown(rep)), &body); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	title := html.EscapeString("widgetlint report " + rep.Metadata.ReportID)
	_, err := fmt.Fprintf(r.w, page, title, body.String())
	return err
}
