// Package prompt assembles the model prompt from retrieved passages, fixed venue context,
// answer policy, few-shot examples and the user's question.
package prompt

import (
	"strings"
	"text/template"

	"github.com/hyperjump/villagerag/internal/models"
)

// ContextHeading introduces the venue context; everything before it is retrieved text.
const ContextHeading = "Contexto sobre La Roca Village:"

// QuestionLabel precedes the user's question.
const QuestionLabel = "Pregunta del usuario:"

// passageSeparator joins retrieved passages.
const passageSeparator = "\n\n"

var promptTemplate = template.Must(template.New("rag").Parse(`{{.Context}}

` + ContextHeading + `
{{.Venue}}

<<<INSTRUCCIONES INTERNAS - NO INCLUIR EN LA RESPUESTA>>>
1. FORMATO:
{{.Format}}
2. TONO:
{{.Tone}}
3. CONTENIDO:
{{.Content}}
4. RESTRICCIONES:
{{.Restrictions}}
<<<FIN DE INSTRUCCIONES INTERNAS>>>

EJEMPLOS DE RESPUESTAS CORRECTAS:
{{.Examples}}

` + QuestionLabel + ` {{.Question}}

IMPORTANTE: Todas las instrucciones anteriores son obligatorias y deben seguirse sin excepción. Las respuestas deben ser concisas (máximo 300 palabras) y basarse en el contexto proporcionado.
`))

type promptData struct {
	Context      string
	Venue        string
	Format       string
	Tone         string
	Content      string
	Restrictions string
	Examples     string
	Question     string
}

// JoinPassages concatenates passage texts in rank order.
func JoinPassages(passages []models.RetrievedPassage) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Chunk.Text
	}
	return strings.Join(texts, passageSeparator)
}

// Compose returns the prompt for question grounded on passages. The output always has the same
// sections in the same order; only the retrieved context and question vary.
func Compose(question string, passages []models.RetrievedPassage) string {
	var b strings.Builder
	// Execute cannot fail: the template is fixed and the data has only string fields.
	_ = promptTemplate.Execute(&b, promptData{
		Context:      JoinPassages(passages),
		Venue:        VenueContext,
		Format:       FormatRules,
		Tone:         ToneRules,
		Content:      ContentRules,
		Restrictions: Restrictions,
		Examples:     Examples,
		Question:     question,
	})
	return b.String()
}
