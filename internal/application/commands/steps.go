package commands

import (
	"github.com/Adwaitfound/tlp-provisioner/internal/application/consts"
)

// StepOutcome is how a provisioning step ended up, derived for resumed
// runs by inspecting the persisted metadata rather than a transactional
// step log.
type StepOutcome int

const (
	OutcomeNotStarted StepOutcome = iota
	OutcomeReused
	OutcomeCreated
	OutcomeFailed
)

func (o StepOutcome) String() string {
	switch o {
	case OutcomeReused:
		return "reused"
	case OutcomeCreated:
		return "created"
	case OutcomeFailed:
		return "failed"
	default:
		return "not-started"
	}
}

// Checkpoint markers written to the metadata step key, in workflow order.
const (
	checkpointSupabaseReady      = "supabase_ready"
	checkpointDatabaseConfigured = "database_configured"
	checkpointVercelReady        = "vercel_ready"
	checkpointDeployed           = "deployed"
)

var checkpointRank = map[string]int{
	checkpointSupabaseReady:      1,
	checkpointDatabaseConfigured: 2,
	checkpointVercelReady:        3,
	checkpointDeployed:           4,
}

// reachedCheckpoint reports whether a previous run progressed at least to
// the given marker. The step key only ever moves forward within a run, so
// a later marker implies every earlier one.
func reachedCheckpoint(metadata map[string]any, marker string) bool {
	return checkpointRank[metaString(metadata, consts.MetaStep)] >= checkpointRank[marker]
}

// metaString reads a string value out of the free-form metadata map.
func metaString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	if value, ok := metadata[key].(string); ok {
		return value
	}
	return ""
}

// databaseProjectOutcome reports Reused when a previous run persisted a
// complete database project: the project id plus both API keys. Anything
// less means the step has to run again from scratch.
func databaseProjectOutcome(metadata map[string]any) StepOutcome {
	if metaString(metadata, consts.MetaSupabaseProjectID) != "" &&
		metaString(metadata, consts.MetaSupabaseAnonKey) != "" &&
		metaString(metadata, consts.MetaSupabaseServiceKey) != "" {
		return OutcomeReused
	}
	return OutcomeNotStarted
}

// deploymentProjectOutcome reports Reused when a previous run persisted
// both the deployment project id and the instance URL.
func deploymentProjectOutcome(metadata map[string]any) StepOutcome {
	if metaString(metadata, consts.MetaVercelProjectID) != "" &&
		metaString(metadata, consts.MetaInstanceURL) != "" {
		return OutcomeReused
	}
	return OutcomeNotStarted
}
