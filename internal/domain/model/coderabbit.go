package model

// BotCodeRabbit is the bot tag set on every parsed CodeRabbit comment.
const BotCodeRabbit = "coderabbitai"

// CodeRabbitComment is a Comment with the structured fields extracted from a
// CodeRabbit review body. Nil optional fields mean no pattern matched; Tools
// is never nil. Explanation is not extracted and is always nil.
type CodeRabbitComment struct {
	Comment
	Bot                   string   `json:"bot"`
	Type                  *string  `json:"type,omitempty"`
	Heading               *string  `json:"heading,omitempty"`
	Summary               *string  `json:"summary,omitempty"`
	Explanation           *string  `json:"explanation,omitempty"`
	Diff                  *string  `json:"diff,omitempty"`
	SuggestedCode         *string  `json:"suggestedCode,omitempty"`
	CommittableSuggestion *string  `json:"committableSuggestion,omitempty"`
	AIPrompt              *string  `json:"aiPrompt,omitempty"`
	Tools                 []string `json:"tools"`
	InternalID            *string  `json:"internalId,omitempty"`
}
