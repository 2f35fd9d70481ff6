package request

import "github.com/Temutjin2k/ride-dispatch/internal/domain/types"

var transitions = map[types.RequestStatus][]types.RequestStatus{
	types.StatusPending:  {types.StatusAccepted, types.StatusDenied, types.StatusCancelled},
	types.StatusAccepted: {types.StatusArrived, types.StatusCancelled},
	types.StatusArrived:  {types.StatusStarted, types.StatusCancelled},
	types.StatusStarted:  {types.StatusFinished, types.StatusCancelled},
}

// CanTransition reports whether a request in from may move to to.
func CanTransition(from, to types.RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// sourcesOf lists the statuses that may move to to, for compare-and-set updates.
func sourcesOf(to types.RequestStatus) []types.RequestStatus {
	var out []types.RequestStatus
	for from, nexts := range transitions {
		for _, n := range nexts {
			if n == to {
				out = append(out, from)
			}
		}
	}
	return out
}
