package generation

import "fmt"

// promptTemplate supplies the retrieved content, the question, and the target
// language, and instructs the model to answer strictly in that language.
const promptTemplate = `You are helping our company's employees with self-service. Given this information:

%s

Answer: %s in %s. Respond strictly in %s.`

// Render formats the prompt for the chat capability.
func (p Prompt) Render() string {
	return fmt.Sprintf(promptTemplate, p.Content, p.Question, languageName(p.Language), languageName(p.Language))
}

// languageName expands the language codes the pipeline uses into names the
// model follows more reliably than bare ISO codes.
func languageName(code string) string {
	switch code {
	case "vi":
		return "Vietnamese"
	case "en":
		return "English"
	default:
		return code
	}
}
