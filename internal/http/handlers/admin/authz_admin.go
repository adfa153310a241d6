package admin

import (
	handlershared "github.com/leafcart/internal/http/handlers/shared"
	"github.com/leafcart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SetStaffRolesRequest 设置员工附加角色请求
type SetStaffRolesRequest struct {
	Roles []string `json:"roles"`
}

// AdminListRoles 角色列表
func (h *Handler) AdminListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "list roles failed", err)
		return
	}
	response.Success(c, roles)
}

// AdminGetStaffRoles 查询员工附加角色
func (h *Handler) AdminGetStaffRoles(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "user_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid user id", nil)
		return
	}

	roles, err := h.AuthzService.GetStaffRoles(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "get staff roles failed", err)
		return
	}
	response.Success(c, gin.H{"user_id": userID, "roles": roles})
}

// AdminSetStaffRoles 覆盖设置员工附加角色
func (h *Handler) AdminSetStaffRoles(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, ok := handlershared.ParseUintParam(c, "user_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid user id", nil)
		return
	}

	var req SetStaffRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.SetStaffRoles(userID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}

	roles, err := h.AuthzService.GetStaffRoles(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "get staff roles failed", err)
		return
	}
	requestLog(c).Infow("admin_staff_roles_updated", "user_id", userID, "roles", roles, "operator_id", operatorID)
	response.Success(c, gin.H{"user_id": userID, "roles": roles})
}
