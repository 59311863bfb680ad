// Package adaptation derives the effective system instruction for each
// session and evolves it from user feedback.
//
// Two feedback paths exist with very different cost profiles:
//
//   - Standardized adjustments are deterministic and free: a feedback
//     category maps to a fixed text block that is layered onto the base
//     template in canonical order. Adjustments accumulate for the life of
//     the session and are idempotent.
//   - Custom feedback is LLM-assisted and fallible: a substantive free-text
//     comment triggers a one-shot rewrite of the session's current
//     effective prompt by the active backend. The candidate is validated
//     for plausible length and required structural markers; only a valid
//     candidate replaces the session's override. An invalid candidate is
//     discarded silently and the caller still sees the feedback recorded.
//
// The engine also keeps a bounded process-wide optimization history for
// reporting, and supports resetting a session back to the base template.
package adaptation
