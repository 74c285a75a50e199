package handler

import (
	"github.com/gin-gonic/gin"

	"khata/internal/service"
)

// TeamHandler handles team membership endpoints.
type TeamHandler struct {
	teamService service.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// List handles GET /api/v1/team
// @Summary List team members
// @Tags team
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.User,meta=PagMeta}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /team [get]
func (h *TeamHandler) List(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	users, total, err := h.teamService.List(c.Request.Context(), companyID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, users, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Invite handles POST /api/v1/team/invitations
// @Summary Invite a team member
// @Description Create an invited member and email them a link to set a password
// @Tags team
// @Accept json
// @Produce json
// @Param body body InviteMemberRequest true "Invitee"
// @Success 201 {object} Response{data=domain.User}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Insufficient role"
// @Failure 409 {object} ErrorResponseBody "Email already a member"
// @Security BearerAuth
// @Router /team/invitations [post]
func (h *TeamHandler) Invite(c *gin.Context) {
	companyID, userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.InviteMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.teamService.Invite(c.Request.Context(), companyID, service.Actor{UserID: userID, Role: role}, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, user)
}

// Update handles PUT /api/v1/team/:id
// @Summary Change a member's role or status
// @Tags team
// @Accept json
// @Produce json
// @Param id path string true "Member ID (UUID)"
// @Param body body service.UpdateMemberInput true "Role and/or status"
// @Success 200 {object} Response{data=domain.User}
// @Failure 400 {object} ErrorResponseBody "Invalid role or status"
// @Failure 404 {object} ErrorResponseBody "Member not found"
// @Failure 409 {object} ErrorResponseBody "Last owner"
// @Security BearerAuth
// @Router /team/{id} [put]
func (h *TeamHandler) Update(c *gin.Context) {
	companyID, userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}
	memberID, ok := pathID(c, "id", "member")
	if !ok {
		return
	}

	var input service.UpdateMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.teamService.UpdateMember(c.Request.Context(), companyID, service.Actor{UserID: userID, Role: role}, memberID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, user)
}

// Remove handles DELETE /api/v1/team/:id
func (h *TeamHandler) Remove(c *gin.Context) {
	companyID, userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}
	memberID, ok := pathID(c, "id", "member")
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), companyID, service.Actor{UserID: userID, Role: role}, memberID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "member removed"})
}
