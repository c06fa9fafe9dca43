// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scores candidate records against a lookup query and selects
// the single best match plus its ordered candidate full-text URLs.
package match

import (
	"errors"
	"net/url"
	"strings"
	"unicode"

	"github.com/pdiddy/paper-finder/pkg/types"
)

// ErrNoMatch is returned when no candidate clears the similarity threshold.
// A lookup with no match is a valid negative outcome, not a failure.
var ErrNoMatch = errors.New("no likely match found")

const (
	// threshold is the minimum combined score a candidate must reach.
	threshold = 0.45

	// firstAuthorBonus rewards an exact first-author family-name match.
	firstAuthorBonus = 0.30

	// anyAuthorBonus rewards the name appearing anywhere in the author list.
	anyAuthorBonus = 0.10

	// noAuthorsPenalty is applied when the candidate lists no authors at all.
	noAuthorsPenalty = 0.05
)

// NormalizeText lowercases, replaces every non-alphanumeric rune with a
// space, and collapses runs of whitespace.
func NormalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeLastName normalizes a family name for comparison: lowercased,
// punctuation stripped, internal spaces removed ("van der Berg" -> "vanderberg").
func NormalizeLastName(s string) string {
	return strings.ReplaceAll(NormalizeText(s), " ", "")
}

// TitleSimilarity returns a ratio in [0,1] between two titles, insensitive
// to case, whitespace, and punctuation. It is the Dice coefficient over
// character bigrams of the normalized strings: 2*|common|/(|A|+|B|), with
// bigrams counted as multisets. Titles identical after normalization score
// 1.0, unrelated titles stay well below the match threshold.
func TitleSimilarity(a, b string) float64 {
	na, nb := NormalizeText(a), NormalizeText(b)
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}

	ba, ca := bigrams(na)
	bb, cb := bigrams(nb)
	if ca == 0 || cb == 0 {
		return 0.0
	}

	common := 0
	for g, n := range ba {
		if m, ok := bb[g]; ok {
			if m < n {
				n = m
			}
			common += n
		}
	}
	return 2.0 * float64(common) / float64(ca+cb)
}

// bigrams returns the multiset of character bigrams in s and its total count.
func bigrams(s string) (map[string]int, int) {
	runes := []rune(s)
	grams := make(map[string]int)
	for i := 0; i+1 < len(runes); i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams, len(runes) - 1
}

// Score computes the combined relevance score for one candidate: title
// similarity plus an author bonus or penalty.
func Score(q types.Query, c types.CandidateRecord) float64 {
	score := TitleSimilarity(c.Title, q.Title)

	target := NormalizeLastName(q.FirstAuthorLastName)
	if target == "" {
		return score
	}
	if len(c.Authors) == 0 && c.FirstAuthorLastName == "" {
		return score - noAuthorsPenalty
	}
	if NormalizeLastName(c.FirstAuthorLastName) == target {
		return score + firstAuthorBonus
	}
	for _, author := range c.Authors {
		if authorContainsName(author, target) {
			return score + anyAuthorBonus
		}
	}
	return score
}

// authorContainsName reports whether any normalized token of the author
// string equals the normalized target family name.
func authorContainsName(author, target string) bool {
	for _, tok := range strings.Fields(NormalizeText(author)) {
		if tok == target {
			return true
		}
	}
	return false
}

// Best scores every candidate and returns the winner as a ResolvedMatch,
// or ErrNoMatch when nothing clears the threshold. Ties are broken by DOI
// presence, then by provider (crossref before europe_pmc), so selection is
// deterministic for a fixed candidate ordering.
func Best(q types.Query, candidates []types.CandidateRecord) (*types.ResolvedMatch, error) {
	bestIdx := -1
	bestScore := 0.0

	for i, c := range candidates {
		s := Score(q, c)
		if s < threshold {
			continue
		}
		if bestIdx < 0 || s > bestScore || (s == bestScore && preferOver(c, candidates[bestIdx])) {
			bestIdx, bestScore = i, s
		}
	}
	if bestIdx < 0 {
		return nil, ErrNoMatch
	}

	best := candidates[bestIdx]
	best.Score = 0 // internal ranking detail, not part of the match

	var urls []string
	if candidates[bestIdx].OAURL != "" {
		urls = MergeURLs([]string{candidates[bestIdx].OAURL})
	}
	return &types.ResolvedMatch{
		Metadata:      best,
		CandidateURLs: urls,
		DOI:           best.DOI,
	}, nil
}

// preferOver reports whether candidate a wins an exact score tie against b:
// a present DOI beats a missing one, then crossref beats europe_pmc.
func preferOver(a, b types.CandidateRecord) bool {
	if (a.DOI != "") != (b.DOI != "") {
		return a.DOI != ""
	}
	return a.Source == types.SourceCrossref && b.Source != types.SourceCrossref
}

// MergeURLs returns the ordered union of the given URL lists, dropping
// duplicates and anything that is not an absolute http(s) URL. Order is
// preserved: earlier lists take precedence.
func MergeURLs(lists ...[]string) []string {
	var merged []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, raw := range list {
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				continue
			}
			cleaned := u.String()
			if !seen[cleaned] {
				seen[cleaned] = true
				merged = append(merged, cleaned)
			}
		}
	}
	return merged
}
