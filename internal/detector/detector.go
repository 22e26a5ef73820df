// =============================================================================
// Invoice Readiness Analyzer - Field Detection Engine
// =============================================================================
//
// This module maps arbitrary, inconsistently-named source columns onto the
// canonical GETS schema. For each of the 19 canonical fields it searches the
// sample row's flattened fields for the best candidate and classifies the
// field as matched, close, or missing.
//
// DETECTION PIPELINE:
//   1. Flatten the sample row one level deep (seller.name, buyer.trn, ...)
//   2. Expose line-item fields as lines[].<key> (nested array, or the
//      flat-CSV heuristic for line-looking column names)
//   3. For each canonical field, scan candidates through the type gate
//   4. Exact variant match wins outright at confidence 1.0
//   5. Otherwise score candidates with Sorensen-Dice bigram similarity
//      against the variant list and keep the best above the 0.6 floor
//
// CLASSIFICATION THRESHOLDS:
//   exact or score >= 0.8  -> matched
//   score in [0.6, 0.8)    -> close (surfaced for human confirmation)
//   otherwise              -> missing
//
// SAMPLING:
//   Only the first row is inspected. The tool trusts structural homogeneity
//   of the dataset rather than sampling multiple rows.
//
// =============================================================================

package detector

import (
	"math"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/complyflow/invoice-readiness/internal/schema"
	"github.com/complyflow/invoice-readiness/internal/types"
)

// =============================================================================
// COVERAGE RESULT
// =============================================================================

// CloseMatch is a field correspondence below the confident-match threshold
// but above the similarity floor, surfaced for human confirmation.
type CloseMatch struct {
	// Target is the canonical path the candidate may correspond to.
	Target string `json:"target"`

	// Candidate is the source field name that scored highest.
	Candidate string `json:"candidate"`

	// Confidence is the similarity score in [0.6, 0.8), rounded to two
	// decimals.
	Confidence float64 `json:"confidence"`
}

// Coverage partitions the canonical schema against a dataset's columns.
// Every canonical field appears in exactly one of the three lists.
type Coverage struct {
	// Matched lists canonical paths found with high confidence.
	Matched []string `json:"matched"`

	// Close lists candidate correspondences needing confirmation.
	Close []CloseMatch `json:"close"`

	// Missing lists canonical paths with no usable candidate.
	Missing []string `json:"missing"`
}

// =============================================================================
// THRESHOLDS
// =============================================================================

const (
	// similarityFloor is the minimum similarity for a candidate to be
	// considered at all.
	similarityFloor = 0.6

	// matchThreshold is the similarity at which a candidate is accepted
	// without confirmation.
	matchThreshold = 0.8

	// closeDiscount scales the weight contribution of close matches in the
	// coverage score.
	closeDiscount = 0.7
)

// dice is the shared similarity metric: bigram Sorensen-Dice, case
// insensitive. The metric is stateless and safe for concurrent use.
var dice = metrics.NewSorensenDice()

// =============================================================================
// ROW FLATTENING
// =============================================================================

// flatField is one flattened candidate field of the sample row. A slice
// (rather than a map) keeps candidate iteration order deterministic, which
// is what breaks similarity ties.
type flatField struct {
	name  string
	value any
}

// flattenSample flattens the sample row one level deep and exposes line-item
// candidates under lines[].<key>.
//
// FLAT-CSV HEURISTIC:
//   When the row has no nested lines array, any top-level field whose
//   normalized name contains line, sku, qty, price, total, or amount is
//   additionally exposed as lines[].<key>. Such a field appears under two
//   candidate names simultaneously.
func flattenSample(row types.Row) []flatField {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var fields []flatField
	for _, key := range keys {
		switch v := row[key].(type) {
		case map[string]any:
			subKeys := make([]string, 0, len(v))
			for sub := range v {
				subKeys = append(subKeys, sub)
			}
			sort.Strings(subKeys)
			for _, sub := range subKeys {
				fields = append(fields, flatField{name: key + "." + sub, value: v[sub]})
			}
		case []any:
			// Nested arrays are handled below; skip them here.
		default:
			fields = append(fields, flatField{name: key, value: v})
		}
	}

	if lines := row.Lines(); len(lines) > 0 {
		first := lines[0]
		lineKeys := make([]string, 0, len(first))
		for key := range first {
			lineKeys = append(lineKeys, key)
		}
		sort.Strings(lineKeys)
		for _, key := range lineKeys {
			fields = append(fields, flatField{name: "lines[]." + key, value: first[key]})
		}
		return fields
	}

	// Flat CSV shape: re-expose line-looking columns as line candidates.
	for _, key := range keys {
		if _, isMap := row[key].(map[string]any); isMap {
			continue
		}
		norm := schema.Normalize(key)
		if strings.Contains(norm, "line") || strings.Contains(norm, "sku") ||
			strings.Contains(norm, "qty") || strings.Contains(norm, "price") ||
			strings.Contains(norm, "total") || strings.Contains(norm, "amount") {
			fields = append(fields, flatField{name: "lines[]." + key, value: row[key]})
		}
	}

	return fields
}

// =============================================================================
// TYPE GATE
// =============================================================================

// typeCompatible reports whether a candidate's inferred value type can
// satisfy the canonical field's expected type. An empty inferred type is a
// wildcard: an empty sample cell never disqualifies a candidate.
func typeCompatible(inferred ValueType, expected schema.FieldType) bool {
	if inferred == TypeEmpty {
		return true
	}
	if expected == schema.TypeEnum {
		return inferred == TypeString
	}
	return string(inferred) == string(expected)
}

// =============================================================================
// FIELD DETECTION
// =============================================================================

// DetectFields matches the dataset's columns against the canonical schema
// and returns the three-way coverage partition. Only rows[0] is inspected.
// A nil or empty dataset yields an all-missing partition.
func DetectFields(rows []types.Row) Coverage {
	coverage := Coverage{
		Matched: []string{},
		Close:   []CloseMatch{},
		Missing: []string{},
	}

	if len(rows) == 0 || rows[0] == nil {
		for i := range schema.Fields {
			coverage.Missing = append(coverage.Missing, schema.Fields[i].Path)
		}
		return coverage
	}

	candidates := flattenSample(rows[0])

	for i := range schema.Fields {
		field := &schema.Fields[i]

		bestName := ""
		bestScore := 0.0
		exact := false

		for _, candidate := range candidates {
			if !typeCompatible(InferType(candidate.value), field.Type) {
				continue
			}

			norm := schema.Normalize(candidate.name)

			// Exact variant match short-circuits all further scoring for
			// this canonical field.
			if matchesVariant(norm, field.Variants) {
				bestName = candidate.name
				bestScore = 1.0
				exact = true
				break
			}

			score := bestVariantSimilarity(norm, field.Variants)
			if score > bestScore && score > similarityFloor {
				bestName = candidate.name
				bestScore = score
			}
		}

		switch {
		case exact || bestScore >= matchThreshold:
			coverage.Matched = append(coverage.Matched, field.Path)
		case bestName != "" && bestScore >= similarityFloor:
			coverage.Close = append(coverage.Close, CloseMatch{
				Target:     field.Path,
				Candidate:  bestName,
				Confidence: math.Round(bestScore*100) / 100,
			})
		default:
			coverage.Missing = append(coverage.Missing, field.Path)
		}
	}

	return coverage
}

// matchesVariant reports whether the normalized candidate name equals any
// normalized variant.
func matchesVariant(normalized string, variants []string) bool {
	for _, variant := range variants {
		if normalized == schema.Normalize(variant) {
			return true
		}
	}
	return false
}

// bestVariantSimilarity returns the maximum Sorensen-Dice similarity between
// the normalized candidate name and the field's normalized variants.
func bestVariantSimilarity(normalized string, variants []string) float64 {
	best := 0.0
	for _, variant := range variants {
		if score := strutil.Similarity(normalized, schema.Normalize(variant), dice); score > best {
			best = score
		}
	}
	return best
}

// =============================================================================
// COVERAGE SCORE
// =============================================================================

// CoverageScore converts a coverage partition into a single 0-100 score.
// Matched fields contribute their full weight; close matches contribute
// weight * confidence discounted by 0.7.
func CoverageScore(coverage Coverage) int {
	totalWeight := float64(schema.TotalWeight())

	matchedWeight := 0.0
	for _, path := range coverage.Matched {
		if field := schema.Lookup(path); field != nil {
			matchedWeight += float64(field.Weight)
		} else {
			matchedWeight += 1
		}
	}

	closeWeight := 0.0
	for _, cm := range coverage.Close {
		weight := 1.0
		if field := schema.Lookup(cm.Target); field != nil {
			weight = float64(field.Weight)
		}
		closeWeight += weight * cm.Confidence * closeDiscount
	}

	score := int(math.Round((matchedWeight + closeWeight) / totalWeight * 100))
	return clampScore(score)
}

// clampScore bounds a score to [0, 100].
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
