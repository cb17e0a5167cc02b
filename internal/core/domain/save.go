package domain

// Save outcomes, shared by the wiki service and its observers.
const (
	SaveResultOK            = "ok"
	SaveResultBodyError     = "body_error"
	SaveResultSnapshotError = "snapshot_error"
	SaveResultPromoteError  = "promote_error"
)
