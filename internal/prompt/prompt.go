// Package prompt renders the instruction text for the two analysis stages:
// claim extraction and claim evaluation. Rendering is pure and deterministic.
package prompt

import (
	"bytes"
	"errors"
	"strings"
	"text/template"
)

// Verdict labels the evaluator must use for every claim.
const (
	VerdictTrue         = "True"
	VerdictFalse        = "False"
	VerdictUndetermined = "Undetermined"
)

// NoClaimsMarker stands in for the claim list when extraction returned nothing.
const NoClaimsMarker = "(no claims were extracted from the video)"

var (
	ErrEmptyLanguage = errors.New("prompt: language is required")
)

// Verdicts returns the permitted verdict labels in a stable order.
func Verdicts() []string {
	return []string{VerdictTrue, VerdictFalse, VerdictUndetermined}
}

const extractionText = `You are an AI assistant analyzing a video to identify claims that require critical evaluation. Your task is to carefully watch and listen to the video and identify all significant claims or assertions presented as facts that a viewer might not be able to easily verify or judge the reasonableness of based solely on common knowledge or the video itself.

Instructions:
- Analyze the video and audio content together.
- List each significant claim or assertion that requires external knowledge or critical thinking to evaluate.
- Filter out subjective opinions, trivial statements, or claims that are immediately verifiable within the video context (e.g., "I am wearing a blue shirt" if the speaker is clearly wearing a blue shirt).
- Present the extracted claims as a simple, numbered list.
- Provide the output in {{.Language}} language.
`

const evaluationText = `You are a truth seeker and judge evaluating claims from a video. You will be provided with a list of claims extracted from the video that require critical evaluation. Your goal is to determine the truthfulness and reasonableness of these claims by cross-referencing them with your extensive general knowledge and using the video context to understand the claim being made.

Instructions:
- Consider the following extracted claims from the video:
{{.Claims}}
{{if .Empty}}
- No claims were extracted. State that no significant claims were identified in the video, and do not invent any.
{{end}}
- For each claim in the list:
    - Briefly explain the claim in the context of the video.
    - Evaluate the truthfulness and reasonableness of the claim by comparing it against your general knowledge and understanding of the world. Use the video's visual and auditory information to fully grasp the claim being made, but do not limit your judgment to just what is presented in the video.
    - Provide a judgment using exactly one of these labels:
        - '{{.True}}': If the claim is well-supported by your general knowledge and appears reasonable in context.
        - '{{.False}}': If the claim is contradicted by your general knowledge or is clearly unreasonable.
        - '{{.Undetermined}}': If your general knowledge does not provide sufficient information to confirm or deny the claim, or if the claim is highly speculative.
    - Provide a clear and concise reason for your judgment, explaining how your general knowledge and the video context led to your conclusion. Be specific about what is known and how it relates to the claim.
- After evaluating all the claims, provide a brief overall judgment summarizing the key findings regarding the truthfulness and reasonableness of the significant claims made in the video based on your knowledge and the evidence presented.
- Provide the entire analysis output in {{.Language}} language.
`

// Templates are compiled once; execution does not mutate them, so they are
// safe to share between goroutines.
var (
	extractionTmpl = template.Must(template.New("extraction").Parse(extractionText))
	evaluationTmpl = template.Must(template.New("evaluation").Parse(evaluationText))
)

type extractionData struct {
	Language string
}

type evaluationData struct {
	Language     string
	Claims       string
	Empty        bool
	True         string
	False        string
	Undetermined string
}

// BuildExtraction renders the stage-one instruction: list the video's
// verifiable claims as a numbered list written in language.
func BuildExtraction(language string) (string, error) {
	if strings.TrimSpace(language) == "" {
		return "", ErrEmptyLanguage
	}
	return render(extractionTmpl, extractionData{Language: language})
}

// BuildEvaluation renders the stage-two instruction. The extracted claims are
// embedded verbatim; an empty list is replaced by NoClaimsMarker and the model
// is told to report that nothing significant was found.
func BuildEvaluation(language, extractedClaims string) (string, error) {
	if strings.TrimSpace(language) == "" {
		return "", ErrEmptyLanguage
	}

	data := evaluationData{
		Language:     language,
		Claims:       extractedClaims,
		True:         VerdictTrue,
		False:        VerdictFalse,
		Undetermined: VerdictUndetermined,
	}
	if strings.TrimSpace(extractedClaims) == "" {
		data.Claims = NoClaimsMarker
		data.Empty = true
	}
	return render(evaluationTmpl, data)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
