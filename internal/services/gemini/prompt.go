package gemini

import (
	"fmt"

	"namearchive/internal/namestore"
)

func validationPrompt(candidate string) string {
	return fmt.Sprintf(`You are a strict name validator for a baby-name trend archive.
Respond with JSON only:
{
  "isValidName": boolean,
  "reason": string
}

Task:
- Evaluate whether %q could plausibly be used as a personal given name.
- Return false for obvious junk, profanity-only tokens, random strings, commands, URLs, or non-name garbage.
- Return true for plausible names from any culture, including rare modern names.`, candidate)
}

func anchorPrompt(candidate string) string {
	return fmt.Sprintf(`Generate historical U.S. baby-name trend anchor points for the name %q.
Output JSON only:
{
  "points": {
    "%d": number,
    "...": number,
    "%d": number
  }
}

Rules:
- Must include year %d and %d.
- Include between 6 and 14 total years.
- Year keys must be integers between %d and %d.
- Values are non-negative integer counts.
- Make the shape plausible for a name popularity trend over time.`,
		candidate,
		namestore.YearStart, namestore.YearEnd,
		namestore.YearStart, namestore.YearEnd,
		namestore.YearStart, namestore.YearEnd)
}
