package reconcile

import "weekly-scheduler/internal/model"

// Action is the outcome of comparing one remote event with its base and local copy.
type Action string

const (
	// ActionSkip leaves everything as is.
	ActionSkip Action = "skip"
	// ActionInsert adds the remote event locally.
	ActionInsert Action = "insert"
	// ActionAcceptRemote overwrites the local copy with the remote state.
	ActionAcceptRemote Action = "accept_remote"
	// ActionRebase records the remote state as base. Both sides already agree.
	ActionRebase Action = "rebase"
	// ActionRemove deletes the local copy.
	ActionRemove Action = "remove"
	// ActionForget drops the base of a ref that is gone on both sides.
	ActionForget Action = "forget"
)

// Local is the local copy of a remote event, if any.
type Local struct {
	Day   model.Weekday
	Event model.Event
}

// Decide compares remote with the last agreed base and the local copy.
// A remote side that changed since base always wins. A remote side equal to
// base keeps local edits, which are pushed later. Refs queued for remote
// deletion are not revived.
func Decide(base *model.BaseEntry, local *Local, remote RemoteEvent, tombstoned bool) Action {
	if remote.Deleted {
		if local == nil {
			if base == nil {
				return ActionSkip
			}
			return ActionForget
		}
		return ActionRemove
	}
	if tombstoned {
		return ActionSkip
	}

	changed := base == nil || !sameEntry(*base, remote.Slot())
	if local == nil {
		if changed {
			return ActionInsert
		}
		return ActionSkip
	}
	if !changed {
		if local.Event.ExternalRef == "" {
			return ActionRebase
		}
		return ActionSkip
	}
	if local.Day == remote.Day && local.Event.Name == remote.Name &&
		local.Event.Start == remote.Start && local.Event.End == remote.End {
		return ActionRebase
	}
	return ActionAcceptRemote
}

func sameEntry(a, b model.BaseEntry) bool {
	return a.Day == b.Day && a.Name == b.Name && a.Start == b.Start && a.End == b.End
}
