package geo

import (
	"strings"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

// MatchCity runs the cascade exact name → substring either way → administrative region substring.
// The first rule that matches anything wins; within a rule the earliest list entry wins.
func MatchCity(result model.GeocodeResult, cities []model.City) (model.City, bool) {
	names := make([]string, len(cities))
	for i, c := range cities {
		names[i] = c.Name
	}
	idx := cascade(names, result.CityCandidates, result.Region)
	if idx < 0 {
		return model.City{}, false
	}
	return cities[idx], true
}

// MatchSubCity applies the same cascade to the sub-cities of an already matched city.
func MatchSubCity(result model.GeocodeResult, subCities []model.SubCity) (model.SubCity, bool) {
	names := make([]string, len(subCities))
	for i, s := range subCities {
		names[i] = s.Name
	}
	idx := cascade(names, result.SubCityCandidates, result.Region)
	if idx < 0 {
		return model.SubCity{}, false
	}
	return subCities[idx], true
}

func cascade(names, candidates []string, region string) int {
	refs := normalizeAll(names)
	cands := normalizeAll(candidates)
	region = normalize(region)

	for i, ref := range refs {
		if ref == "" {
			continue
		}
		for _, c := range cands {
			if c != "" && c == ref {
				return i
			}
		}
	}

	for i, ref := range refs {
		if ref == "" {
			continue
		}
		for _, c := range cands {
			if c != "" && (strings.Contains(c, ref) || strings.Contains(ref, c)) {
				return i
			}
		}
	}

	if region == "" {
		return -1
	}
	for i, ref := range refs {
		if ref == "" {
			continue
		}
		if strings.Contains(region, ref) || strings.Contains(ref, region) {
			return i
		}
	}

	return -1
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func normalizeAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = normalize(v)
	}
	return out
}
