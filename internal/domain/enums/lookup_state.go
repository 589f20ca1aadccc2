package enums

type LookupState string

const (
	LookupStateIdle     LookupState = "idle"
	LookupStatePending  LookupState = "pending"
	LookupStateResolved LookupState = "resolved"
	LookupStateFailed   LookupState = "failed"
)
