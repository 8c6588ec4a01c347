package generation

import (
	"fmt"
	"strings"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

func styleExtractionPrompt(samples []string) string {
	return fmt.Sprintf(`Analyze these writing samples to extract the author's style:

%s

Extract:
1. Overall tone (formal/casual/technical/conversational)
2. Vocabulary complexity level
3. Typical sentence structure patterns
4. Paragraph length preference
5. Common phrases or expressions (list)
6. Recurring writing patterns (list)
7. Voice preference (active/passive)
8. 3-5 example sentences that best capture the style (list)

Return as JSON with keys: tone, voice, vocabulary_level, sentence_structure,
paragraph_length, common_phrases, writing_patterns, examples`, strings.Join(samples, "\n\n"))
}

func describeStyle(style *models.StyleProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tone: %s\n", style.Tone)
	fmt.Fprintf(&b, "Voice: %s\n", style.Voice)
	fmt.Fprintf(&b, "Vocabulary: %s\n", style.VocabularyLevel)
	fmt.Fprintf(&b, "Sentence structure: %s\n", style.SentenceStructure)
	fmt.Fprintf(&b, "Paragraph length: %s\n", style.ParagraphLength)

	if len(style.CommonPhrases) > 0 {
		fmt.Fprintf(&b, "Common phrases: %s\n", strings.Join(style.CommonPhrases, "; "))
	}

	if len(style.WritingPatterns) > 0 {
		fmt.Fprintf(&b, "Writing patterns: %s\n", strings.Join(style.WritingPatterns, "; "))
	}

	if len(style.Examples) > 0 {
		b.WriteString("Example sentences:\n")

		for _, example := range style.Examples {
			fmt.Fprintf(&b, "  - %s\n", example)
		}
	}

	return b.String()
}

func instructionsSection(instructions string) string {
	if instructions == "" {
		return ""
	}

	return fmt.Sprintf(`
=== IMPORTANT INSTRUCTIONS ===
%s

YOU MUST follow these instructions carefully.
`, instructions)
}

func initialDraftPrompt(req GenerateRequest) string {
	return fmt.Sprintf(`Transform this idea/brain dump into a polished blog post:

=== IDEA/BRAIN DUMP ===
%s

=== STYLE TO MATCH ===
%s%s
Write a complete blog post that:
1. Captures all key ideas from the brain dump
2. Matches the author's style closely
3. Follows any additional instructions
4. Has a compelling title and introduction
5. Flows logically with clear sections
6. Includes a strong conclusion

Return ONLY the blog post content in markdown format, starting with # Title.`,
		req.Brief, describeStyle(req.Style), instructionsSection(req.Instructions))
}

func revisionPrompt(req GenerateRequest) string {
	var fb strings.Builder

	if len(req.Feedback.SourceIssues) > 0 {
		fb.WriteString("Accuracy issues to fix:\n")

		for _, issue := range req.Feedback.SourceIssues {
			fmt.Fprintf(&fb, "  - %s\n", issue)
		}
	}

	if len(req.Feedback.StyleIssues) > 0 {
		fb.WriteString("Style issues to fix:\n")

		for _, issue := range req.Feedback.StyleIssues {
			fmt.Fprintf(&fb, "  - %s\n", issue)
		}
	}

	if len(req.Feedback.UserRequests) > 0 {
		fb.WriteString("User requests:\n")

		for _, request := range req.Feedback.UserRequests {
			fmt.Fprintf(&fb, "%s\n\n", request)
		}
	}

	return fmt.Sprintf(`Revise this blog post based on the feedback below.

=== CURRENT DRAFT ===
%s

=== ORIGINAL IDEA (for reference) ===
%s

=== STYLE TO MATCH ===
%s%s
=== FEEDBACK TO ADDRESS ===
%s
Address every feedback item while preserving what already works. Keep the
author's style. Return ONLY the revised blog post in markdown format,
starting with # Title.`,
		req.PreviousDraft, req.Brief, describeStyle(req.Style),
		instructionsSection(req.Instructions), fb.String())
}

func sourceReviewPrompt(draft, brief, instructions string) string {
	return fmt.Sprintf(`Review this blog post against the original idea for factual accuracy.

=== ORIGINAL IDEA ===
%s

=== BLOG POST ===
%s%s
Check that:
1. Every claim in the post is supported by the original idea
2. No key ideas from the original are missing or distorted
3. Any additional instructions were followed

Return JSON with keys:
- issues: list of strings describing each accuracy problem (empty if none)
- accuracy_score: 0-1 overall accuracy
- strengths: list of strings
- needs_revision: boolean (true if accuracy < 0.8 or instructions not followed)`,
		brief, draft, instructionsSection(instructions))
}

func styleReviewPrompt(draft string, style *models.StyleProfile) string {
	return fmt.Sprintf(`Review this blog post for consistency with the author's style profile.

=== STYLE PROFILE ===
%s
=== BLOG POST ===
%s

Check tone, voice, vocabulary level, sentence structure and paragraph length
against the profile.

Return JSON with keys:
- issues: list of strings describing each style mismatch (empty if none)
- consistency_score: 0-1 overall score
- strengths: list of strings
- needs_revision: boolean (true if score < 0.7)`,
		describeStyle(style), draft)
}
