package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchTracks
	FetchLikes
	FetchPlaylists
	FetchFollowings
	ScanCandidates
	ComputeStats
	AssembleReport
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchTracks:
		return "fetch_tracks"
	case FetchLikes:
		return "fetch_likes"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchFollowings:
		return "fetch_followings"
	case ScanCandidates:
		return "scan_candidates"
	case ComputeStats:
		return "compute_stats"
	case AssembleReport:
		return "assemble_report"
	default:
		return ""
	}
}

func fetchUpdate(phase Phase, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    1,
		Total:   1,
		Message: message,
	}
}

func candidateUpdate(step, total int, username string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanCandidates,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Comparing taste with %s (%d/%d)...", username, step, total),
	}
}

func statsUpdate(year int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ComputeStats,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Crunching %d listening stats...", year),
	}
}

func assembleUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssembleReport,
		Step:    1,
		Total:   1,
		Message: "Assembling your year in review...",
	}
}
