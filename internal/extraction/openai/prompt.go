package openai

import "fmt"

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const (
	systemPrompt = "You are a compliance document extraction engine. Respond with JSON only. " +
		"No markdown. Never omit keys. Output must match the schema exactly."

	schemaPrompt = `Extract the following fields from the document text and return a single JSON object:
{
  "documentType": "short snake_case category, e.g. nursing_license, dea_registration, insurance_certificate, or unknown",
  "licenseNumber": "the license, permit, registration, or certificate number exactly as printed, or empty string",
  "ownerName": "the full name of the person or entity the document was issued to, or empty string",
  "expirationDate": "the expiration or valid-through date as YYYY-MM-DD, or empty string if none is printed"
}
Use only information present in the text. Do not guess numbers or dates.`

	fixSystemPrompt = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."
)

// BuildPrompt creates the chat messages for a field extraction request.
func BuildPrompt(text, fileName string) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "developer", Content: schemaPrompt},
		{Role: "user", Content: buildUserPrompt(text, fileName)},
	}
}

func buildFixPrompt(raw []byte) []Message {
	return []Message{
		{Role: "system", Content: fixSystemPrompt},
		{Role: "developer", Content: schemaPrompt},
		{Role: "user", Content: fmt.Sprintf("Fix this JSON to match the schema exactly. Output JSON only:\n%s", raw)},
	}
}

func buildUserPrompt(text, fileName string) string {
	name := fileName
	if name == "" {
		name = "N/A"
	}
	return fmt.Sprintf("File name:\n%s\n\nDocument Text:\n%s", name, text)
}
