package entity

import "fmt"

// Type identifies a target entity collection. The string value is the
// collection name used by the target store API.
type Type string

const (
	TypeOrganization Type = "organizations"
	TypeLocation     Type = "locations"
	TypeGroup        Type = "groups"
	TypePillar       Type = "pillars"
	TypeUser         Type = "users"
	TypeUserActivity Type = "user_activities"
	TypeFeedback     Type = "feedback"
)

// Types lists all entity types in upload dependency order:
// Organizations and Locations before Groups, Groups before Users and
// Pillars, Pillars before UserActivities, UserActivities before Feedback.
var Types = []Type{
	TypeOrganization,
	TypeLocation,
	TypeGroup,
	TypePillar,
	TypeUser,
	TypeUserActivity,
	TypeFeedback,
}

// ParseType converts a collection name to a Type.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// Status is the normalized lifecycle status of an entity.
// The zero value means the legacy status code had no mapping.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

// UserType is the normalized role of a user.
// The zero value means the legacy type code had no mapping.
type UserType string

const (
	UserParticipant UserType = "participant"
	UserSSA         UserType = "ssa"
	UserAdmin       UserType = "admin"
)

// Record is implemented by every target entity. The identifier is always
// a 36-character UUID-shaped string produced by identity synthesis.
type Record interface {
	RecordID() string
	RecordType() Type
}

// Organization is a top-level tenant.
type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    Status `json:"status,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (o Organization) RecordID() string { return o.ID }
func (o Organization) RecordType() Type { return TypeOrganization }

// Location is a physical site belonging to an organization.
type Location struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	Status         Status `json:"status,omitempty"`
}

func (l Location) RecordID() string { return l.ID }
func (l Location) RecordType() Type { return TypeLocation }

// Group is a program cohort at a location.
type Group struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	LocationID     string `json:"location_id"`
	Name           string `json:"name"`
	ProgramID      string `json:"program_id"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	Status         Status `json:"status,omitempty"`
}

func (g Group) RecordID() string { return g.ID }
func (g Group) RecordType() Type { return TypeGroup }

// Pillar is one curriculum unit of a program period. Its legacy category,
// period and program fields form the composite key that user activities
// resolve against, so they are carried on the target record verbatim.
type Pillar struct {
	ID           string `json:"id"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	ProgramID    string `json:"program_id"`
	Period       int    `json:"period"`
	Name         string `json:"name"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
}

func (p Pillar) RecordID() string { return p.ID }
func (p Pillar) RecordType() Type { return TypePillar }

// User is a platform member.
type User struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	FirstName      string   `json:"first_name,omitempty"`
	LastName       string   `json:"last_name,omitempty"`
	Type           UserType `json:"type,omitempty"`
	Status         Status   `json:"status,omitempty"`
	GroupID        string   `json:"group_id,omitempty"`
	OrganizationID string   `json:"organization_id,omitempty"`
	LocationID     string   `json:"location_id,omitempty"`
	BirthDate      string   `json:"birth_date,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

func (u User) RecordID() string { return u.ID }
func (u User) RecordType() Type { return TypeUser }

// UserActivity is one user's completion record for a pillar. PillarID is
// not present in the legacy export; it is filled in by composite-key
// resolution against the pillar set.
type UserActivity struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	PillarID     string  `json:"pillar_id"`
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Period       int     `json:"period"`
	ProgramID    string  `json:"program_id"`
	Status       Status  `json:"status,omitempty"`
	CompletedAt  string  `json:"completed_at,omitempty"`
	Score        float64 `json:"score,omitempty"`
}

func (a UserActivity) RecordID() string { return a.ID }
func (a UserActivity) RecordType() Type { return TypeUserActivity }

// Feedback is a user's rating of a completed activity.
type Feedback struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	ActivityID  string `json:"activity_id"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment,omitempty"`
	SubmittedAt string `json:"submitted_at,omitempty"`
}

func (f Feedback) RecordID() string { return f.ID }
func (f Feedback) RecordType() Type { return TypeFeedback }
