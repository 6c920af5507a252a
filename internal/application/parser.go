package application

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ericfisherdev/reviewdigest/internal/apperr"
	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

const bodyPreviewLen = 200

// typeEmojiPrefix strips the leading marker emoji from a parsed comment type.
var typeEmojiPrefix = regexp.MustCompile(`^(?:⚠️|💡|❗|💬|🛠️)\s*`)

// fieldExtractor pulls one optional field out of a CodeRabbit comment body.
type fieldExtractor struct {
	name    string
	pattern *regexp.Regexp
	clean   func(string) string
	assign  func(c *model.CodeRabbitComment, value *string)
}

// extractors lists the single-value fields in the order they are logged.
// Tools is handled separately because it collects every match.
var extractors = []fieldExtractor{
	{
		name:    "type",
		pattern: regexp.MustCompile(`(?m)^_((?:⚠️|💡|❗|💬|🛠️).+?)_`),
		clean: func(s string) string {
			return typeEmojiPrefix.ReplaceAllString(strings.TrimSpace(s), "")
		},
		assign: func(c *model.CodeRabbitComment, v *string) { c.Type = v },
	},
	{
		name:    "heading",
		pattern: regexp.MustCompile(`(?m)^###\s+(.+)$`),
		assign:  func(c *model.CodeRabbitComment, v *string) { c.Heading = v },
	},
	{
		name:    "summary",
		pattern: regexp.MustCompile(`\*\*(.+?)\*\*`),
		assign:  func(c *model.CodeRabbitComment, v *string) { c.Summary = v },
	},
	{
		name:    "diff",
		pattern: regexp.MustCompile("```diff\n([\\s\\S]+?)```"),
		assign:  func(c *model.CodeRabbitComment, v *string) { c.Diff = v },
	},
	{
		name:    "suggestedCode",
		pattern: regexp.MustCompile("```suggestion\n([\\s\\S]+?)```"),
		assign:  func(c *model.CodeRabbitComment, v *string) { c.SuggestedCode = v },
	},
	{
		name:    "committableSuggestion",
		pattern: regexp.MustCompile("📝 Committable suggestion\\s*```[^\n]*\n([\\s\\S]*?)```"),
		assign:  func(c *model.CodeRabbitComment, v *string) { c.CommittableSuggestion = v },
	},
	{
		name:    "aiPrompt",
		pattern: regexp.MustCompile("<summary>🤖 Prompt for AI Agents</summary>[\\s\\S]*?```[^\n]*\n([\\s\\S]+?)```"),
		assign:  func(c *model.CodeRabbitComment, v *string) { c.AIPrompt = v },
	},
	{
		name:    "internalId",
		pattern: regexp.MustCompile(`<!-- fingerprinting:([a-z:]+) -->`),
		assign:  func(c *model.CodeRabbitComment, v *string) { c.InternalID = v },
	},
}

// toolsPattern matches every static-analysis tool section in document order.
var toolsPattern = regexp.MustCompile(`<summary>🪛 ([^<]+)</summary>`)

// extract returns the cleaned first capture of e.pattern, or nil when the
// pattern does not match or the cleaned value is empty.
func (e fieldExtractor) extract(body string) *string {
	m := e.pattern.FindStringSubmatch(body)
	if m == nil {
		return nil
	}

	value := strings.TrimSpace(m[1])
	if e.clean != nil {
		value = strings.TrimSpace(e.clean(value))
	}
	if value == "" {
		return nil
	}
	return &value
}

func extractTools(body string) []string {
	tools := []string{}
	for _, m := range toolsPattern.FindAllStringSubmatch(body, -1) {
		if tool := strings.TrimSpace(m[1]); tool != "" {
			tools = append(tools, tool)
		}
	}
	return tools
}

// IsCodeRabbitAuthor reports whether login belongs to the CodeRabbit bot,
// with or without the GitHub App "[bot]" suffix.
func IsCodeRabbitAuthor(login string) bool {
	login = strings.ToLower(strings.TrimSpace(login))
	return login == model.BotCodeRabbit || login == model.BotCodeRabbit+"[bot]"
}

// ParserService extracts structured fields from CodeRabbit review comments.
// It keeps no state between calls and is safe for concurrent use.
type ParserService struct {
	logger *slog.Logger
}

// NewParserService creates a ParserService.
func NewParserService(logger *slog.Logger) *ParserService {
	return &ParserService{logger: logger.With("module", "ParserService")}
}

// Parse returns comment enriched with the fields extracted from its body.
// Fields whose marker is missing stay nil; Tools is always non-nil.
// The input comment is not modified.
func (p *ParserService) Parse(comment *model.Comment) (result *model.CodeRabbitComment, err error) {
	if comment == nil || comment.Body == "" {
		errCtx := map[string]any{
			"hasComment": comment != nil,
			"hasBody":    comment != nil && comment.Body != "",
		}
		if comment != nil {
			errCtx["commentId"] = comment.CommentID
		}
		p.logger.Warn("invalid comment provided for parsing", "has_comment", comment != nil)
		return nil, apperr.Parsing("Comment or comment body is required for parsing", errCtx, nil)
	}

	p.logger.Debug("parsing coderabbit comment",
		"comment_id", comment.CommentID,
		"author", comment.Author.Login,
		"path", comment.Path,
		"body_length", len(comment.Body),
	)

	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
			result = nil
			p.logger.Error("failed to parse coderabbit comment",
				"comment_id", comment.CommentID,
				"body_preview", bodyPreview(comment.Body),
				"error", err,
			)
		}
	}()

	parsed := &model.CodeRabbitComment{
		Comment: *comment,
		Bot:     model.BotCodeRabbit,
	}
	for _, e := range extractors {
		e.assign(parsed, e.extract(comment.Body))
	}
	parsed.Tools = extractTools(comment.Body)

	p.logger.Debug("parsed coderabbit comment",
		"comment_id", comment.CommentID,
		"has_type", parsed.Type != nil,
		"has_heading", parsed.Heading != nil,
		"has_summary", parsed.Summary != nil,
		"has_diff", parsed.Diff != nil,
		"has_suggested_code", parsed.SuggestedCode != nil,
		"has_committable_suggestion", parsed.CommittableSuggestion != nil,
		"has_ai_prompt", parsed.AIPrompt != nil,
		"tools_count", len(parsed.Tools),
		"has_internal_id", parsed.InternalID != nil,
	)

	return parsed, nil
}

// panicError converts a recovered value into an error, keeping the original
// error value when the panic carried one.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.New(fmt.Sprint(r))
}

func bodyPreview(body string) string {
	runes := []rune(body)
	if len(runes) <= bodyPreviewLen {
		return body
	}
	return string(runes[:bodyPreviewLen]) + "..."
}
