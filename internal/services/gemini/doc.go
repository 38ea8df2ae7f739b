// Package gemini wraps the Gemini generateContent API for name validation and
// trend anchor synthesis.
//
// Every call enforces a hard per-attempt timeout and a bounded retry budget.
// Retries fire only for upstream rate limiting, server errors, and timeouts;
// malformed output and other client errors fail immediately. Exhausted retries
// surface as distinguishable sentinel errors so the resolution pipeline can
// pick the right HTTP status.
package gemini
