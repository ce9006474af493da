package prompt

import (
	"strings"
	"testing"

	"github.com/hyperjump/villagerag/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passages(texts ...string) []models.RetrievedPassage {
	out := make([]models.RetrievedPassage, len(texts))
	for i, t := range texts {
		out[i] = models.RetrievedPassage{Chunk: models.Chunk{Text: t}, Rank: i + 1}
	}
	return out
}

func TestCompose_sectionOrder(t *testing.T) {
	p := Compose("¿a qué hora abren?", passages("Horario: 10:00 a 21:00h", "Parking gratuito"))

	markers := []string{
		"Horario: 10:00 a 21:00h\n\nParking gratuito",
		ContextHeading,
		"outlet de lujo",
		"1. FORMATO:",
		"2. TONO:",
		"3. CONTENIDO:",
		"4. RESTRICCIONES:",
		"EJEMPLOS DE RESPUESTAS CORRECTAS:",
		"Ejemplo 5:",
		QuestionLabel + " ¿a qué hora abren?",
		"IMPORTANTE:",
	}
	last := -1
	for _, m := range markers {
		i := strings.Index(p, m)
		require.GreaterOrEqual(t, i, 0, "missing %q", m)
		assert.Greater(t, i, last, "%q out of order", m)
		last = i
	}
	assert.True(t, strings.HasPrefix(p, "Horario: 10:00 a 21:00h"), "retrieved context comes first")
}

func TestCompose_noPassages(t *testing.T) {
	p := Compose("hola", nil)
	assert.True(t, strings.HasPrefix(p, "\n\n"+ContextHeading))
	assert.Contains(t, p, QuestionLabel+" hola")
}

func TestCompose_passageTextIsNotInterpreted(t *testing.T) {
	p := Compose("q", passages("{{.Question}} <b>&"))
	assert.True(t, strings.HasPrefix(p, "{{.Question}} <b>&"))
}

func TestCompose_deterministic(t *testing.T) {
	ps := passages("a", "b")
	assert.Equal(t, Compose("q", ps), Compose("q", ps))
}

func TestJoinPassages(t *testing.T) {
	assert.Equal(t, "", JoinPassages(nil))
	assert.Equal(t, "uno\n\ndos", JoinPassages(passages("uno", "dos")))
}
