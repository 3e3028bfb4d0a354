package mapper

import (
	"fmt"
	"strconv"

	"github.com/emberwell/migrate/internal/dates"
	"github.com/emberwell/migrate/internal/entity"
	"github.com/emberwell/migrate/internal/identity"
	"github.com/emberwell/migrate/internal/ingest"
)

// Prefixes embedded in synthesized identifiers for entity classes that
// need human-traceable IDs when debugging resolution problems.
const (
	groupPrefix  = "group"
	pillarPrefix = "pillar"
)

// MapOrganization converts a legacy organizations row.
func MapOrganization(row ingest.Row) (entity.Organization, error) {
	created, err := mapDate(row, "created_at")
	if err != nil {
		return entity.Organization{}, err
	}
	return entity.Organization{
		ID:        identity.FormatID(row["organization_id"]),
		Name:      row["name"],
		Status:    mapStatus(row["status"]),
		CreatedAt: created,
	}, nil
}

// MapLocation converts a legacy locations row.
func MapLocation(row ingest.Row) (entity.Location, error) {
	return entity.Location{
		ID:             identity.FormatID(row["location_id"]),
		OrganizationID: identity.FormatID(row["organization_id"]),
		Name:           row["name"],
		City:           row["city"],
		State:          row["state"],
		Status:         mapStatus(row["status"]),
	}, nil
}

// MapGroup converts a legacy groups row.
func MapGroup(row ingest.Row) (entity.Group, error) {
	start, err := mapDate(row, "start_date")
	if err != nil {
		return entity.Group{}, err
	}
	end, err := mapDate(row, "end_date")
	if err != nil {
		return entity.Group{}, err
	}
	return entity.Group{
		ID:             identity.FormatIDWithPrefix(groupPrefix, row["group_id"]),
		OrganizationID: identity.FormatID(row["organization_id"]),
		LocationID:     identity.FormatID(row["location_id"]),
		Name:           row["name"],
		ProgramID:      identity.FormatID(row["program_id"]),
		StartDate:      start,
		EndDate:        end,
		Status:         mapStatus(row["status"]),
	}, nil
}

// MapPillar converts a legacy pillars row. The legacy category and
// program identifiers are preserved (synthesized) on the target record
// because activities resolve against the (category, period, program)
// tuple.
func MapPillar(row ingest.Row) (entity.Pillar, error) {
	period, err := mapInt(row, "period")
	if err != nil {
		return entity.Pillar{}, err
	}
	start, err := mapDate(row, "start_date")
	if err != nil {
		return entity.Pillar{}, err
	}
	end, err := mapDate(row, "end_date")
	if err != nil {
		return entity.Pillar{}, err
	}
	return entity.Pillar{
		ID:           identity.FormatIDWithPrefix(pillarPrefix, row["pillar_id"]),
		CategoryID:   identity.FormatID(row["category_id"]),
		CategoryName: CategoryName(row["category_id"]),
		ProgramID:    identity.FormatID(row["program_id"]),
		Period:       period,
		Name:         row["name"],
		StartDate:    start,
		EndDate:      end,
	}, nil
}

// MapUser converts a legacy users row.
func MapUser(row ingest.Row) (entity.User, error) {
	birth, err := mapDate(row, "birth_date")
	if err != nil {
		return entity.User{}, err
	}
	created, err := mapDate(row, "created_at")
	if err != nil {
		return entity.User{}, err
	}
	u := entity.User{
		ID:        identity.FormatID(row["user_id"]),
		Email:     row["email"],
		FirstName: row["first_name"],
		LastName:  row["last_name"],
		Type:      mapUserType(row["user_type"]),
		Status:    mapStatus(row["status"]),
		BirthDate: birth,
		CreatedAt: created,
	}
	// Membership references are optional in the legacy export; an empty
	// cell means no membership, not the fallback-seed identifier.
	if row["group_id"] != "" {
		u.GroupID = identity.FormatIDWithPrefix(groupPrefix, row["group_id"])
	}
	if row["organization_id"] != "" {
		u.OrganizationID = identity.FormatID(row["organization_id"])
	}
	if row["location_id"] != "" {
		u.LocationID = identity.FormatID(row["location_id"])
	}
	return u, nil
}

// MapUserActivity converts a legacy user_activities row. PillarID is left
// empty here: it is filled in by the reference resolver, which owns the
// composite-key lookup.
func MapUserActivity(row ingest.Row) (entity.UserActivity, error) {
	period, err := mapInt(row, "period")
	if err != nil {
		return entity.UserActivity{}, err
	}
	completed, err := mapDate(row, "completed_at")
	if err != nil {
		return entity.UserActivity{}, err
	}
	score, err := mapFloat(row, "score")
	if err != nil {
		return entity.UserActivity{}, err
	}
	return entity.UserActivity{
		ID:           identity.FormatID(row["activity_id"]),
		UserID:       identity.FormatID(row["user_id"]),
		CategoryID:   identity.FormatID(row["category_id"]),
		CategoryName: CategoryName(row["category_id"]),
		Period:       period,
		ProgramID:    identity.FormatID(row["program_id"]),
		Status:       mapStatus(row["status"]),
		CompletedAt:  completed,
		Score:        score,
	}, nil
}

// MapFeedback converts a legacy feedback row.
func MapFeedback(row ingest.Row) (entity.Feedback, error) {
	rating, err := mapInt(row, "rating")
	if err != nil {
		return entity.Feedback{}, err
	}
	submitted, err := mapDate(row, "submitted_at")
	if err != nil {
		return entity.Feedback{}, err
	}
	return entity.Feedback{
		ID:          identity.FormatID(row["feedback_id"]),
		UserID:      identity.FormatID(row["user_id"]),
		ActivityID:  identity.FormatID(row["activity_id"]),
		Rating:      rating,
		Comment:     row["comment"],
		SubmittedAt: submitted,
	}, nil
}

// mapDate normalizes a date cell, wrapping failures with the column name.
func mapDate(row ingest.Row, col string) (string, error) {
	v, err := dates.FormatDate(row[col])
	if err != nil {
		return "", fmt.Errorf("column %s: %w", col, err)
	}
	return v, nil
}

// mapInt parses an integer cell. An empty cell maps to zero.
func mapInt(row ingest.Row, col string) (int, error) {
	raw := row[col]
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("column %s: invalid integer %q", col, raw)
	}
	return n, nil
}

// mapFloat parses a numeric cell. An empty cell maps to zero.
func mapFloat(row ingest.Row, col string) (float64, error) {
	raw := row[col]
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: invalid number %q", col, raw)
	}
	return f, nil
}
