package agent

import (
	"strings"
	"text/template"
)

// RefusalMessage is the exact sentence the chat agent must emit for
// questions outside the lab-report domain.
const RefusalMessage = "Sorry, I can only help with lab reports and medical test interpretation."

// PageBreakMarker separates per-page analyses in the merged synthesis input.
const PageBreakMarker = "\n\n--- PAGE BREAK ---\n\n"

const domainGuard = `If the user query is not about medical lab results, reply only:
"` + RefusalMessage + `"`

var pageExtractionTmpl = template.Must(template.New("page_extraction").Parse(
	`Page {{.Page}} of a blood test report.
Extract all test names, values, and reference ranges.

{{.Text}}`))

var pageAnalysisTmpl = template.Must(template.New("page_analysis").Parse(
	`Analyze Page {{.Page}} of the blood report:
{{.Text}}`))

var finalReportTmpl = template.Must(template.New("final_report").Parse(
	`You will receive outputs from multiple pages of a blood report. Combine all pages into a single, structured, user-friendly final health report. Group related tests into meaningful categories (e.g., Liver Function, Lipid Profile, etc.), summarize key findings, highlight potential concerns, and provide short, concise diet and lifestyle recommendations.

Keep the tone factual, safe, and supportive. Avoid diagnosis or prescriptions.

{{.Merged}}`))

var weakContextTmpl = template.Must(template.New("weak_context").Parse(domainGuard + `

The user asked a lab-related question: "{{.Query}}"

First, use the local context below. If it seems insufficient, call the web search tool to fetch 1-2 authoritative lines (acceptable domains: {{.Domains}}) and then answer concisely.

Local context:
{{.Context}}

When answering:
- Be concise, structured, and factual
- Cite which snippets you relied on
- Do not diagnose or prescribe`))

var strongContextTmpl = template.Must(template.New("strong_context").Parse(domainGuard + `

Use the retrieved local medical data to answer precisely.

User query:
{{.Query}}

Retrieved context:
{{.Context}}

Provide a clear, factual, and concise answer based on the above.`))

type pagePromptData struct {
	Page int
	Text string
}

type chatPromptData struct {
	Query   string
	Context string
	Domains string
}

func render(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		// Templates only reference string/int fields, so execution
		// cannot fail at runtime; a panic here means a broken template.
		panic(err)
	}
	return b.String()
}

// PageExtractionPrompt builds the user prompt for the extraction task of a
// single page.
func PageExtractionPrompt(page int, text string) string {
	return render(pageExtractionTmpl, pagePromptData{Page: page, Text: text})
}

// PageAnalysisPrompt builds the user prompt for the analysis task of a
// single page.
func PageAnalysisPrompt(page int, text string) string {
	return render(pageAnalysisTmpl, pagePromptData{Page: page, Text: text})
}

// FinalReportPrompt wraps the merged page analyses for the synthesis call.
func FinalReportPrompt(merged string) string {
	return render(finalReportTmpl, struct{ Merged string }{merged})
}

// WeakContextPrompt is used when retrieval returned fewer matches than the
// confidence threshold: the model may use the partial local context and is
// permitted one bounded web search over the allow-listed domains.
func WeakContextPrompt(query, context string, domains []string) string {
	return render(weakContextTmpl, chatPromptData{
		Query:   query,
		Context: context,
		Domains: strings.Join(domains, ", "),
	})
}

// StrongContextPrompt is used when retrieval is confident: the model must
// answer solely from the supplied context.
func StrongContextPrompt(query, context string) string {
	return render(strongContextTmpl, chatPromptData{Query: query, Context: context})
}
