package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"alyra/internal/voting/models"
	"alyra/pkg/domain"
	dErrors "alyra/pkg/domain-errors"
	"alyra/pkg/platform/audit"
	"alyra/pkg/platform/httputil"
	"alyra/pkg/requestcontext"
)

// Service defines the ballot operations exposed over HTTP.
type Service interface {
	CreateBallot(ctx context.Context) (*models.Ballot, error)
	ListBallots(ctx context.Context) ([]*models.Ballot, error)
	GetBallot(ctx context.Context, id domain.BallotID) (*models.Ballot, error)
	GetWorkflowStatus(ctx context.Context, id domain.BallotID) (models.WorkflowStatus, error)
	AddVoter(ctx context.Context, id domain.BallotID, voter domain.Identity) error
	GetVoter(ctx context.Context, id domain.BallotID, voter domain.Identity) (models.Voter, error)
	AddProposal(ctx context.Context, id domain.BallotID, description string) (int, error)
	GetOneProposal(ctx context.Context, id domain.BallotID, index int) (models.Proposal, error)
	ListProposals(ctx context.Context, id domain.BallotID) ([]models.Proposal, error)
	StartProposalsRegistering(ctx context.Context, id domain.BallotID) error
	EndProposalsRegistering(ctx context.Context, id domain.BallotID) error
	StartVotingSession(ctx context.Context, id domain.BallotID) error
	EndVotingSession(ctx context.Context, id domain.BallotID) error
	SetVote(ctx context.Context, id domain.BallotID, proposalID int) error
	TallyVotes(ctx context.Context, id domain.BallotID) (int, error)
	WinningProposalID(ctx context.Context, id domain.BallotID) (int, error)
	ListEvents(ctx context.Context, id domain.BallotID) ([]audit.Event, error)
}

// Handler wires ballot endpoints to the voting service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the caller-facing ballot endpoints. The router is expected
// to authenticate callers before these handlers run.
func (h *Handler) Register(r chi.Router) {
	r.Post("/ballots", h.HandleCreateBallot)
	r.Get("/ballots", h.HandleListBallots)
	r.Get("/ballots/{ballotID}", h.HandleGetBallot)
	r.Get("/ballots/{ballotID}/status", h.HandleGetWorkflowStatus)
	r.Post("/ballots/{ballotID}/voters", h.HandleAddVoter)
	r.Get("/ballots/{ballotID}/voters/{identity}", h.HandleGetVoter)
	r.Post("/ballots/{ballotID}/proposals", h.HandleAddProposal)
	r.Get("/ballots/{ballotID}/proposals", h.HandleListProposals)
	r.Get("/ballots/{ballotID}/proposals/{index}", h.HandleGetOneProposal)
	r.Post("/ballots/{ballotID}/workflow/proposals-registering/start", h.transition(h.service.StartProposalsRegistering))
	r.Post("/ballots/{ballotID}/workflow/proposals-registering/end", h.transition(h.service.EndProposalsRegistering))
	r.Post("/ballots/{ballotID}/workflow/voting-session/start", h.transition(h.service.StartVotingSession))
	r.Post("/ballots/{ballotID}/workflow/voting-session/end", h.transition(h.service.EndVotingSession))
	r.Post("/ballots/{ballotID}/votes", h.HandleSetVote)
	r.Post("/ballots/{ballotID}/tally", h.HandleTallyVotes)
	r.Get("/ballots/{ballotID}/winner", h.HandleWinningProposal)
}

// RegisterOps mounts operator endpoints. The router is expected to check the
// admin token.
func (h *Handler) RegisterOps(r chi.Router) {
	r.Get("/ballots/{ballotID}/events", h.HandleListEvents)
}

// HandleCreateBallot handles POST /ballots.
func (h *Handler) HandleCreateBallot(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.CreateBallot(r.Context())
	if err != nil {
		h.fail(w, r, "create ballot", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toBallotResponse(b))
}

// HandleListBallots handles GET /ballots.
func (h *Handler) HandleListBallots(w http.ResponseWriter, r *http.Request) {
	ballots, err := h.service.ListBallots(r.Context())
	if err != nil {
		h.fail(w, r, "list ballots", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBallotListResponse(ballots))
}

func (h *Handler) HandleGetBallot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ballotID(w, r)
	if !ok {
		return
	}
	b, err := h.service.GetBallot(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get ballot", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBallotResponse(b))
}

func (h *Handler) HandleGetWorkflowStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ballotID(w, r)
	if !ok {
		return
	}
	status, err := h.service.GetWorkflowStatus(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get workflow status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(status))
}

// HandleAddVoter handles POST /ballots/{ballotID}/voters.
func (h *Handler) HandleAddVoter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.ballotID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddVoterRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.AddVoter(ctx, id, req.ParsedIdentity()); err != nil {
		h.fail(w, r, "add voter", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, VoterResponse{
		Identity:     req.ParsedIdentity().String(),
		IsRegistered: true,
	})
}

func (h *Handler) HandleGetVoter(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ballotID(w, r)
	if !ok {
		return
	}
	voter, err := domain.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := h.service.GetVoter(r.Context(), id, voter)
	if err != nil {
		h.fail(w, r, "get voter", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VoterResponse{
		Identity:        voter.String(),
		IsRegistered:    v.IsRegistered,
		HasVoted:        v.HasVoted,
		VotedProposalID: v.VotedProposalID,
	})
}

// HandleAddProposal handles POST /ballots/{ballotID}/proposals.
func (h *Handler) HandleAddProposal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.ballotID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddProposalRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	index, err := h.service.AddProposal(ctx, id, req.Description)
	if err != nil {
		h.fail(w, r, "add proposal", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, AddProposalResponse{ProposalID: index})
}

func (h *Handler) HandleListProposals(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ballotID(w, r)
	if !ok {
		return
	}
	proposals, err := h.service.ListProposals(r.Context(), id)
	if err != nil {
		h.fail(w, r, "list proposals", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ProposalListResponse{Proposals: toProposalResponses(proposals)})
}

func (h *Handler) HandleGetOneProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ballotID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "proposal index must be an integer"))
		return
	}
	p, err := h.service.GetOneProposal(r.Context(), id, index)
	if err != nil {
		h.fail(w, r, "get proposal", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ProposalResponse{ID: index, Description: p.Description, VoteCount: p.VoteCount})
}

// transition adapts an argument-free workflow operation. Success returns 204.
func (h *Handler) transition(op func(ctx context.Context, id domain.BallotID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.ballotID(w, r)
		if !ok {
			return
		}
		if err := op(r.Context(), id); err != nil {
			h.fail(w, r, "workflow transition", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleSetVote handles POST /ballots/{ballotID}/votes.
func (h *Handler) HandleSetVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.ballotID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetVoteRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.SetVote(ctx, id, *req.ProposalID); err != nil {
		h.fail(w, r, "set vote", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleTallyVotes(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ballotID(w, r)
	if !ok {
		return
	}
	winner, err := h.service.TallyVotes(r.Context(), id)
	if err != nil {
		h.fail(w, r, "tally votes", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, WinnerResponse{WinningProposalID: winner})
}

func (h *Handler) HandleWinningProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ballotID(w, r)
	if !ok {
		return
	}
	winner, err := h.service.WinningProposalID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get winner", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, WinnerResponse{WinningProposalID: winner})
}

// HandleListEvents handles GET /ballots/{ballotID}/events.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ballotID(w, r)
	if !ok {
		return
	}
	events, err := h.service.ListEvents(r.Context(), id)
	if err != nil {
		h.fail(w, r, "list events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEventListResponse(events))
}

func (h *Handler) ballotID(w http.ResponseWriter, r *http.Request) (domain.BallotID, bool) {
	id, err := domain.ParseBallotID(chi.URLParam(r, "ballotID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.BallotID{}, false
	}
	return id, true
}

// fail writes err. Rejections are already logged by the service; only
// internal failures are logged again with the route context.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		ctx := r.Context()
		h.logger.ErrorContext(ctx, "failed to "+action,
			"request_id", requestcontext.RequestID(ctx),
			"path", r.URL.Path,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
