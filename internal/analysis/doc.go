// Package analysis builds the descriptive report of a preprocessed startup
// table: outcome counts, category and state breakdowns, founding years,
// feature correlations with the outcome, milestone flows, investment types
// among acquired startups, the funding histogram and a log1p preview.
//
// Encoded columns are decoded back to their labels through the mappings the
// pipeline produced, so the report speaks in "acquired" and "closed" rather
// than codes. Sections whose columns are not configured or not present are
// left empty.
package analysis
