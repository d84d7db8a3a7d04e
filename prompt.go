package gotoon

import "strings"

// InjectInstructions appends a response-format block to a prompt, showing the
// model the notation through an encoded example. This is the only consumer of
// the encoder on the generation side; the decode path never uses it.
func InjectInstructions(prompt string, example any) (string, error) {
	encoded, err := Encode(example)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(strings.TrimRight(prompt, "\n"))
	b.WriteString("\n\nRespond only with the requested data in the following line-based notation, with no surrounding prose or code fences. Example:\n\n")
	b.WriteString(encoded)
	return b.String(), nil
}
