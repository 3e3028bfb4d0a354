package mapper

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/emberwell/migrate/internal/entity"
)

// UnknownCategory is the sentinel name for category UUIDs with no entry
// in the lookup table.
const UnknownCategory = "Unknown"

//go:embed categories.yaml
var categoriesYAML []byte

// categoryNames maps legacy category UUIDs to display names. Loaded once
// from the embedded data artifact.
var categoryNames = mustLoadCategories()

func mustLoadCategories() map[string]string {
	names := make(map[string]string)
	if err := yaml.Unmarshal(categoriesYAML, &names); err != nil {
		panic(fmt.Sprintf("embedded categories.yaml is malformed: %v", err))
	}
	return names
}

// CategoryName translates a legacy category UUID to its display name.
// Unmapped UUIDs return the UnknownCategory sentinel: category naming is
// cosmetic, not structural, so it never fails a record.
func CategoryName(legacyID string) string {
	if name, ok := categoryNames[legacyID]; ok {
		return name
	}
	return UnknownCategory
}

// statusByCode translates legacy numeric status codes. Unknown codes map
// to the zero Status, never to a default-active guess.
var statusByCode = map[string]entity.Status{
	"1": entity.StatusActive,
	"2": entity.StatusInactive,
	"3": entity.StatusPending,
}

// userTypeByCode translates legacy user-type codes.
var userTypeByCode = map[string]entity.UserType{
	"1": entity.UserParticipant,
	"2": entity.UserSSA,
	"3": entity.UserAdmin,
}

// mapStatus returns the normalized status for a legacy code, or the zero
// value when the code has no mapping.
func mapStatus(code string) entity.Status {
	return statusByCode[code]
}

// mapUserType returns the normalized user type for a legacy code, or the
// zero value when the code has no mapping.
func mapUserType(code string) entity.UserType {
	return userTypeByCode[code]
}
