package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Languages maps supported output-language codes to display names.
var Languages = map[string]string{
	"zh-CN": "Simplified Chinese (简体中文)",
	"zh-TW": "Traditional Chinese (繁體中文)",
	"en":    "English",
	"ja":    "Japanese (日本語)",
	"ko":    "Korean (한국어)",
	"fr":    "French (Français)",
	"de":    "German (Deutsch)",
	"es":    "Spanish (Español)",
	"pt":    "Portuguese (Português)",
	"ar":    "Arabic (العربية)",
	"ru":    "Russian (Русский)",
}

const defaultLanguage = "zh-CN"

// NormalizeLanguage returns code if supported, otherwise the default.
func NormalizeLanguage(code string) string {
	if _, ok := Languages[code]; ok {
		return code
	}
	return defaultLanguage
}

func languageName(code string) string {
	if name, ok := Languages[code]; ok {
		return name
	}
	return Languages[defaultLanguage]
}

func languageInstruction(code string) string {
	return fmt.Sprintf("CRITICAL LANGUAGE REQUIREMENT: You MUST write ALL output text "+
		"(titles, summaries, explanations, JSON string values, everything) in %s. "+
		"Do NOT use any other language for the output values.", languageName(code))
}

func lawsContext(passages []string) string {
	if len(passages) == 0 {
		return "(no reference statutes available for this category)"
	}
	lines := make([]string, 0, len(passages))
	for i, p := range passages {
		lines = append(lines, fmt.Sprintf("[Reference statute %d]: %s", i+1, p))
	}
	return strings.Join(lines, "\n")
}

// issuesBrief serializes the risk issues for reuse in the later prompts.
func issuesBrief(issues []Issue) string {
	b, err := json.Marshal(issues)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func riskReviewPrompt(lang, category, laws, contractText string) string {
	return fmt.Sprintf(`%s

You are a senior legal partner with a top-tier law firm background, skilled at spotting legal risk in the smallest details.

Task: deeply review the CONTRACT UNDER REVIEW, applying the LEGAL REFERENCES for the "%s" category in a penetrating analysis.
[LEGAL REFERENCES]: %s
[CONTRACT UNDER REVIEW]: %s

Requirements:
1. Identify hidden traps, asymmetric obligations, and missing key clauses. Be extremely professional and incisive, and attach a lawReference (specific statute name, article, and content) to each finding.
2. Give a riskScore (0-100).
3. Report only the 5-7 most critical, highest-severity risk points; never more than 8.
4. clauseText must be a complete verbatim excerpt from the contract; do not alter a single character.

Output JSON (all string values in %s):
{
  "contractType": "contract type",
  "jurisdiction": "governing jurisdiction",
  "overallRisk": "critical/high/medium/low (translated)",
  "riskScore": integer,
  "summary": "one objective, comprehensive assessment",
  "issues": [
    {
      "id": 1,
      "severity": "critical/high/medium/low (translated)",
      "title": "risk title",
      "clauseText": "verbatim excerpt from the contract (preserve every space and line break)",
      "lawReference": "specific statute name, article, and content",
      "plainLanguage": ["plain-language explanation"],
      "problem": "in-depth risk analysis",
      "whatToDo": ["precise countermeasures"],
      "alternative": "defensive redraft suggestion (concrete replacement wording)"
    }
  ]
}`, languageInstruction(lang), category, laws, contractText, languageName(lang))
}

func emailPrompt(lang, issues string) string {
	return fmt.Sprintf(`%s

You are a senior commercial lawyer and negotiation expert. Based on the legal risk points below, draft a long business negotiation email.
[RISK POINTS]: %s

Requirements:
1. The email body ("email") must be extremely thorough: elaborate professionally on every key risk point and explain its potential impact on the cooperation.
2. Follow strict business-email formatting with clear paragraphs and professional wording.
3. At least 500 words, demonstrating deep expertise and sincerity.
4. Never use double quotes inside the text; use single quotes for quoting.
5. Keep the tone natural and do not assume the counterparty's surname.

Output JSON:
{
  "strategy": "a short statement of the overall negotiation approach",
  "email": "the full negotiation email of 500+ words..."
}`, languageInstruction(lang), issues)
}

func scriptsPrompt(lang, issues string) string {
	return fmt.Sprintf(`%s

Based on the legal risk points below, design multi-dimensional spoken negotiation scripts with differently styled approaches.
[RISK POINTS]: %s

Script requirements:
1. talkTrack: a natural opening plus 3 core persuasion reasons.
2. styles: three completely distinct, fully reasoned approaches - aggressive, consultative, and compromise - each broken into clear points.
3. Keep the wording natural; never assume the counterparty's surname or gender.

Output JSON:
{
  "talkTrack": {
    "opening": "opening line...",
    "reasons": ["reason 1", "reason 2", "reason 3"]
  },
  "styles": {
    "aggressive": "hardline arguments and pressure-testing lines...",
    "consultative": "win-win wording and amendment proposals...",
    "compromise": "bottom-line protections and middle-ground terms..."
  }
}`, languageInstruction(lang), issues)
}

func revisionPrompt(lang, contractText, issues string) string {
	return fmt.Sprintf(`%s

You are a senior legal counsel expert in contract drafting. Using the ORIGINAL CONTRACT and the IDENTIFIED RISK POINTS AND REDRAFT SUGGESTIONS, produce a complete revised contract.

[ORIGINAL CONTRACT]:
%s

[IDENTIFIED RISK POINTS AND REDRAFT SUGGESTIONS]:
%s

Task requirements:
1. Preserve the original contract's full structure, clause numbering, and the verbatim text of every clause not affected by a risk point.
2. For each risky clause, apply its "alternative" (redraft suggestion) as a replacement or supplement.
3. Add any missing essential clauses in an appropriate position.
4. Mark every edited passage with a leading [REVISED] tag for side-by-side review.
5. revisionNotes lists a short explanation for every change.
6. revisedContract contains the complete revised contract text.

Output JSON:
{
  "revisedContract": "full revised contract (original structure preserved, edits marked [REVISED])...",
  "revisionNotes": [
    {
      "clauseRef": "clause number or name",
      "change": "what was changed and why"
    }
  ],
  "revisionSummary": "overall description of this revision (under 100 words)"
}`, languageInstruction(lang), contractText, issues)
}

// OCRRefinePrompt asks the model to clean OCR-extracted text without touching
// its substance. Output is plain text, not JSON.
func OCRRefinePrompt(rawText string) string {
	return fmt.Sprintf(`You are a professional document OCR correction expert.
The following text was extracted via OCR from a scanned contract/document image and may contain:
- Random line breaks in the middle of sentences
- Garbled characters or misrecognized characters
- Extra spaces, duplicate characters
- Merged words that should be separate
- Missing punctuation

Please clean and reconstruct this OCR-extracted text into properly formatted, readable contract text.
Preserve ALL original content and meaning - do NOT add, remove or alter any substantive contract terms.
Fix only formatting, obvious OCR errors, and text flow issues.
Output the refined text as plain text only (no JSON, no markdown).

Raw OCR text:
%s`, rawText)
}
