package lifecycle

// State is a step of the startup sequence
type State int

const (
	StateDiscoverModel State = iota
	StateLoadExisting
	StateCreateAndTrain
	StateCheckPendingTraining
	StateMergeAndRetrain
	StateKeepCurrent
	StateReady
)

func (s State) String() string {
	switch s {
	case StateDiscoverModel:
		return "DISCOVER_MODEL"
	case StateLoadExisting:
		return "LOAD_EXISTING"
	case StateCreateAndTrain:
		return "CREATE_AND_TRAIN"
	case StateCheckPendingTraining:
		return "CHECK_PENDING_TRAINING"
	case StateMergeAndRetrain:
		return "MERGE_AND_RETRAIN"
	case StateKeepCurrent:
		return "KEEP_CURRENT"
	case StateReady:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

// PendingStatus is what happened to the pending training batch
type PendingStatus int

const (
	PendingNone       PendingStatus = iota // No batch file
	PendingMerged                          // Merged, archived and retrained
	PendingInvalid                         // Loaded but failed validation; left in place
	PendingUnreadable                      // Could not be read or parsed; left in place
)

func (p PendingStatus) String() string {
	switch p {
	case PendingNone:
		return "none"
	case PendingMerged:
		return "merged"
	case PendingInvalid:
		return "invalid"
	case PendingUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}
