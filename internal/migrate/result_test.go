package migrate

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/emberwell/migrate/internal/entity"
)

func TestReportString(t *testing.T) {
	report := Report{
		RunToken: "0191b2c3-d4e5-7f60-8a9b-0c1d2e3f4a5b",
		DryRun:   true,
		Summaries: []Summary{
			{EntityType: entity.TypeOrganization, Attempted: 2, Succeeded: 2},
			{
				EntityType: entity.TypeUserActivity,
				Attempted:  3,
				Succeeded:  1,
				Skipped:    1,
				Failed:     1,
				Skips: []RecordIssue{
					{RecordID: "a3", Phase: PhaseResolve, Message: "no matching pillar"},
				},
				Failures: []RecordIssue{
					{RecordID: "a2", Phase: PhaseWrite, Message: "store rejected"},
				},
			},
		},
	}

	g := goldie.New(t)
	g.Assert(t, "report", []byte(report.String()))
}
