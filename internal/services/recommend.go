package services

import (
	"strings"

	"lingua-service/internal/models"
)

// Everyone is the filter value meaning "no constraint on this axis".
const Everyone = "Everyone"

// FilterByLanguage narrows a candidate list by exact case-insensitive match
// on native and/or learning language. When both axes are constrained, both
// must match. The result is computed fresh on every call; nothing here is
// cached across requests.
func FilterByLanguage(users []models.User, native, learning string) []models.User {
	nativeFilter := normalizeFilter(native)
	learningFilter := normalizeFilter(learning)

	if nativeFilter == "" && learningFilter == "" {
		return users
	}

	filtered := make([]models.User, 0, len(users))
	for _, u := range users {
		if nativeFilter != "" && !strings.EqualFold(u.NativeLanguage, nativeFilter) {
			continue
		}
		if learningFilter != "" && !strings.EqualFold(u.LearningLanguage, learningFilter) {
			continue
		}
		filtered = append(filtered, u)
	}
	return filtered
}

// normalizeFilter maps the absent and Everyone cases to "no constraint".
func normalizeFilter(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, Everyone) {
		return ""
	}
	return value
}
