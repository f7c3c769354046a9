package handler

import (
	"encoding/json"
	"time"

	"alyra/internal/voting/models"
	"alyra/pkg/platform/audit"
)

// BallotResponse is the full view of one ballot.
// WinningProposalID is omitted until votes are tallied.
type BallotResponse struct {
	ID                string             `json:"id"`
	Administrator     string             `json:"administrator"`
	Status            int                `json:"status"`
	StatusName        string             `json:"status_name"`
	VoterCount        int                `json:"voter_count"`
	Proposals         []ProposalResponse `json:"proposals"`
	WinningProposalID *int               `json:"winning_proposal_id,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// BallotSummary is one entry of GET /ballots.
type BallotSummary struct {
	ID         string    `json:"id"`
	Status     int       `json:"status"`
	StatusName string    `json:"status_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type BallotListResponse struct {
	Ballots []BallotSummary `json:"ballots"`
}

type StatusResponse struct {
	Status     int    `json:"status"`
	StatusName string `json:"status_name"`
}

type VoterResponse struct {
	Identity        string `json:"identity"`
	IsRegistered    bool   `json:"is_registered"`
	HasVoted        bool   `json:"has_voted"`
	VotedProposalID *int   `json:"voted_proposal_id"`
}

type ProposalResponse struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	VoteCount   int    `json:"vote_count"`
}

type ProposalListResponse struct {
	Proposals []ProposalResponse `json:"proposals"`
}

type AddProposalResponse struct {
	ProposalID int `json:"proposal_id"`
}

type WinnerResponse struct {
	WinningProposalID int `json:"winning_proposal_id"`
}

// EventResponse is one audit trail entry.
type EventResponse struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	Category   string          `json:"category"`
	Actor      string          `json:"actor"`
	Timestamp  time.Time       `json:"timestamp"`
	RequestID  string          `json:"request_id,omitempty"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
}

func toStatusResponse(s models.WorkflowStatus) StatusResponse {
	return StatusResponse{Status: int(s), StatusName: s.String()}
}

func toBallotResponse(b *models.Ballot) BallotResponse {
	resp := BallotResponse{
		ID:            b.ID.String(),
		Administrator: b.Administrator.String(),
		Status:        int(b.Status),
		StatusName:    b.Status.String(),
		Proposals:     toProposalResponses(b.Proposals),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for _, v := range b.Voters {
		if v.IsRegistered {
			resp.VoterCount++
		}
	}
	if winner, err := b.Winner(); err == nil {
		resp.WinningProposalID = &winner
	}
	return resp
}

func toBallotListResponse(ballots []*models.Ballot) BallotListResponse {
	out := BallotListResponse{Ballots: make([]BallotSummary, 0, len(ballots))}
	for _, b := range ballots {
		out.Ballots = append(out.Ballots, BallotSummary{
			ID:         b.ID.String(),
			Status:     int(b.Status),
			StatusName: b.Status.String(),
			CreatedAt:  b.CreatedAt,
		})
	}
	return out
}

func toProposalResponses(proposals []models.Proposal) []ProposalResponse {
	out := make([]ProposalResponse, 0, len(proposals))
	for i, p := range proposals {
		out = append(out, ProposalResponse{ID: i, Description: p.Description, VoteCount: p.VoteCount})
	}
	return out
}

func toEventListResponse(events []audit.Event) EventListResponse {
	out := EventListResponse{Events: make([]EventResponse, 0, len(events))}
	for _, e := range events {
		out.Events = append(out.Events, EventResponse{
			ID:         e.ID.String(),
			Action:     e.Action,
			Category:   string(e.Category()),
			Actor:      e.Actor.String(),
			Timestamp:  e.Timestamp,
			RequestID:  e.RequestID,
			Attributes: e.Attributes,
		})
	}
	return out
}
