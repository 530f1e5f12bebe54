package answer

import (
	"fmt"
	"strings"
)

const (
	contextSlot  = "{context}"
	questionSlot = "{question}"
)

// Template is a prompt template with named context and question slots.
// Both slots are validated at construction so a malformed template fails
// fast instead of producing silently broken prompts.
type Template struct {
	text string
}

// NewTemplate validates that text carries both slots.
func NewTemplate(text string) (Template, error) {
	if !strings.Contains(text, contextSlot) {
		return Template{}, fmt.Errorf("prompt template missing %s slot", contextSlot)
	}
	if !strings.Contains(text, questionSlot) {
		return Template{}, fmt.Errorf("prompt template missing %s slot", questionSlot)
	}
	return Template{text: text}, nil
}

// Render fills both slots.
func (t Template) Render(contextText, question string) string {
	out := strings.Replace(t.text, contextSlot, contextText, 1)
	return strings.Replace(out, questionSlot, question, 1)
}

const defaultTemplateText = `You are a Tesla car manual bot and have access to all the owner's manuals of all the Tesla car models ever produced.
Answer the question with confidence and a friendly manner. If you don't know the answer, say I don't know.

{context}
Question: {question}
`

// DefaultTemplate returns the car-manual assistant persona.
func DefaultTemplate() Template {
	t, err := NewTemplate(defaultTemplateText)
	if err != nil {
		panic(err)
	}
	return t
}
