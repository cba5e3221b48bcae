package http

import (
	"net/http"

	"github.com/tair/pos-core/internal/staff"
)

// Login handles POST /api/auth/login
// @Summary Operator login
// @Description Authenticate an operator and get a JWT token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Failure 429 {object} Response
// @Router /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.login.Handle(r.Context(), staff.LoginCommand{Username: req.Username, Password: req.Password})
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "Signed in", resp)
}
