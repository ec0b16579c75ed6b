package domain

type Action string

const (
	ActionSetTimer Action = "set_timer"
	ActionRejected Action = "rejected"
	ActionOpenSite Action = "open_site"
	ActionSearch   Action = "search"
	ActionTellTime Action = "tell_time"
	ActionNone     Action = "none"
)

// Command is the outcome of matching free text against the local skills.
// Exactly one Action is ever produced for a given input; which fields are
// meaningful depends on it.
type Command struct {
	Action          Action
	DurationSeconds float64 // ActionSetTimer
	URL             string  // ActionOpenSite
	SiteName        string  // ActionOpenSite
	Query           string  // ActionSearch
	Refusal         string  // ActionRejected
	RawText         string
}
