// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/registry"
)

type MembershipHandler struct {
	reg *registry.Registry
}

func NewMembershipHandler(reg *registry.Registry) *MembershipHandler {
	return &MembershipHandler{reg: reg}
}

// GetMyWorkflows handles GET /me/workflows
// Lists workflows the caller administers or is registered in, oldest first.
func (h *MembershipHandler) GetMyWorkflows(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	memberships := h.reg.Memberships(identity)
	out := make([]models.Membership, len(memberships))
	for i, m := range memberships {
		out[i] = toMembership(m)
	}
	middleware.JSONResponse(w, http.StatusOK, out)
}
