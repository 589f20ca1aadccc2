package model

import "github.com/Oohan21/utopia-drafts/internal/domain/enums"

// ValidationState is derived from a Draft and never stored.
type ValidationState struct {
	Errors   map[string]string
	Warnings map[string]string
	Sections map[enums.Section]int
	Progress int
}

func (v ValidationState) Valid() bool {
	return len(v.Errors) == 0
}
