package queue

// Guarded field names referenced by stage rules and surfaced verbatim in
// MissingRequiredFields errors and read models.
const (
	FieldLockedScript        = "locked_script"
	FieldFinalDeliverableURL = "final_deliverable_url"
	FieldPostingCaption      = "posting_caption"
	FieldPostingPlatforms    = "posting_platforms"
)

// StageRule describes, for one stage, where an item may go next, which role
// advances it, and which fields must be populated per target. A zero
// RequiredRole means only automation or an admin moves the item.
type StageRule struct {
	Targets        []Stage
	RequiredRole   Role
	RequiredFields map[Stage][]string
	Claimable      bool
	ActionLabel    string
}

var stageRules = map[Stage]StageRule{
	StageGeneratingScript: {
		Targets: []Stage{StageNotRecorded, StageNeedsScript},
		RequiredFields: map[Stage][]string{
			StageNotRecorded: {FieldLockedScript},
		},
		ActionLabel: "Await script generation",
	},
	StageNeedsScript: {
		Targets: []Stage{StageNotRecorded},
		RequiredFields: map[Stage][]string{
			StageNotRecorded: {FieldLockedScript},
		},
		ActionLabel: "Attach locked script",
	},
	StageNotRecorded: {
		Targets:      []Stage{StageRecorded},
		RequiredRole: RoleRecorder,
		Claimable:    true,
		ActionLabel:  "Record video",
	},
	StageRecorded: {
		Targets:      []Stage{StageReadyToPost},
		RequiredRole: RoleEditor,
		Claimable:    true,
		RequiredFields: map[Stage][]string{
			StageReadyToPost: {FieldFinalDeliverableURL},
		},
		ActionLabel: "Edit and attach final deliverable",
	},
	StageReadyToPost: {
		Targets:      []Stage{StagePosted},
		RequiredRole: RoleUploader,
		Claimable:    true,
		RequiredFields: map[Stage][]string{
			StagePosted: {FieldPostingCaption, FieldPostingPlatforms},
		},
		ActionLabel: "Post to platforms",
	},
	StagePosted: {},
}

// RuleFor returns the transition rule for a stage.
func RuleFor(stage Stage) (StageRule, bool) {
	rule, ok := stageRules[stage]
	return rule, ok
}

// AllowsTarget reports whether the rule permits advancing to target.
func (r StageRule) AllowsTarget(target Stage) bool {
	for _, t := range r.Targets {
		if t == target {
			return true
		}
	}
	return false
}

// PrimaryTarget returns the happy-path next stage, or "" for terminal stages.
func (r StageRule) PrimaryTarget() Stage {
	if len(r.Targets) == 0 {
		return ""
	}
	return r.Targets[0]
}

// StageForRole returns the claimable stage a role pulls work from.
func StageForRole(role Role) (Stage, bool) {
	for _, stage := range allStages {
		rule := stageRules[stage]
		if rule.Claimable && rule.RequiredRole == role {
			return stage, true
		}
	}
	return "", false
}

// FieldPresent reports whether a guarded field is populated on the item.
// Unknown field names count as missing so a rule typo fails closed.
func FieldPresent(item *Item, field string) bool {
	if item == nil {
		return false
	}
	switch field {
	case FieldLockedScript:
		return item.ScriptLocked
	case FieldFinalDeliverableURL:
		return item.FinalDeliverableURL != ""
	case FieldPostingCaption:
		return item.PostingCaption != ""
	case FieldPostingPlatforms:
		return item.PostingPlatforms != ""
	default:
		return false
	}
}

// MissingFields returns the guarded fields still empty on item for the
// transition from its current stage to target.
func MissingFields(item *Item, target Stage) []string {
	if item == nil {
		return nil
	}
	rule, ok := stageRules[item.Stage]
	if !ok {
		return nil
	}
	var missing []string
	for _, field := range rule.RequiredFields[target] {
		if !FieldPresent(item, field) {
			missing = append(missing, field)
		}
	}
	return missing
}
