// Package prompt provides the local template shapes that promptvault stores in
// a prompt catalog, built on top of langchaingo's prompts package.
//
// Three shapes are supported:
//   - PromptTemplate: a single text template (stored as a TEXT variant)
//   - ChatPromptTemplate: ordered system/human/ai message templates (CHAT)
//   - FewShotChatTemplate: examples plus a chat template (local only)
//
// Templates use f-string placeholders by default:
//
//	chat, _ := prompt.QuickChatTemplate(
//	    "You are an astronomer. Answer questions about {topic}.",
//	    "{user_input}",
//	)
//
//	msgs, err := chat.FormatMessages(map[string]any{
//	    "topic":      "the solar system",
//	    "user_input": "How far away is Mars?",
//	})
//
// Template files:
//
//	loader := prompt.NewFileLoader("./prompts")
//	tmpl, _ := loader.Load("astronomy.yaml")
//
// A YAML template file looks like:
//
//	name: astronomical_questions
//	messages:
//	  - role: system
//	    template: "You are an astronomer."
//	  - role: human
//	    template: "{user_input}"
package prompt
