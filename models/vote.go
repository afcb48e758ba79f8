package models

// VoteResult is the outcome of toggling a user's vote on an issue.
type VoteResult struct {
	Voted      bool `json:"voted"`
	TotalVotes int  `json:"totalLikes"`
}
