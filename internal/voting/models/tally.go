package models

// Tally returns the index of the proposal with the most votes. The scan runs
// in ascending index order and only replaces the leader on a strictly greater
// count, so ties go to the lowest index and zero votes elect index 0.
func Tally(proposals []Proposal) int {
	winner := 0
	for i := range proposals {
		if proposals[i].VoteCount > proposals[winner].VoteCount {
			winner = i
		}
	}
	return winner
}
