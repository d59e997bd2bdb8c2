// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package insight

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/pubscope/pkg/types"
)

// AbstractPreview is the number of abstract characters shown to the oracle
// per publication when ranking or looking for gaps.
const AbstractPreview = 200

var funcs = template.FuncMap{
	"preview": preview,
	"join":    strings.Join,
}

var summaryPromptTmpl = template.Must(template.New("summary").Parse(`Analyze this scientific abstract and provide:
1. A one-line summary
2. 3-5 key findings
3. The relevance to space missions
4. Optional: any research gap areas

Label each part with its heading ("One-line summary:", "Key findings:", "Relevance to space missions:", "Research gap areas:") and separate the parts with a blank line. Write key findings and gap areas as "-" bullet lists.

Abstract: {{.Abstract}}
`))

var rankPromptTmpl = template.Must(template.New("rank").Funcs(funcs).Parse(`Given the search query: "{{.Query}}"

Rank these publications by relevance to the query. Return only a comma-separated list of publication IDs in order of relevance (most relevant first).

Publications:
{{range .Publications}}
ID: {{.ID}}
Title: {{.Title}}
Abstract: {{preview .Abstract}}
{{end}}`))

var gapsPromptTmpl = template.Must(template.New("gaps").Funcs(funcs).Parse(`Analyze these space biology research publications and identify 5 research gaps or under-researched areas. For each gap, provide:
1. The topic name
2. A severity score from 0.0 to 1.0 (higher means more significant gap)
3. 2-3 related topics
4. A brief description of the gap

Format your response as JSON with this structure:
[
  {
    "topic": "string",
    "severity": number,
    "relatedTopics": ["string", "string"],
    "description": "string"
  }
]

Publications:
{{range .Publications}}
Title: {{.Title}}
Abstract: {{preview .Abstract}}
Topics: {{join .Topics ", "}}
{{end}}`))

func preview(abstract string) string {
	r := []rune(abstract)
	if len(r) <= AbstractPreview {
		return abstract
	}
	return string(r[:AbstractPreview]) + "..."
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func summaryPrompt(abstract string) (string, error) {
	return render(summaryPromptTmpl, struct{ Abstract string }{abstract})
}

func rankPrompt(query string, pubs []types.Publication) (string, error) {
	return render(rankPromptTmpl, struct {
		Query        string
		Publications []types.Publication
	}{query, pubs})
}

func gapsPrompt(pubs []types.Publication) (string, error) {
	return render(gapsPromptTmpl, struct {
		Publications []types.Publication
	}{pubs})
}
