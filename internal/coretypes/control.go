package coretypes

// ControlIndex enumerates one of a target entity's automatable
// parameters.
type ControlIndex int

// ControlLink ties a source entity's output to one target parameter.
type ControlLink struct {
	TargetUid Uid         `json:"target_uid"`
	Param     ControlIndex `json:"param"`
}
