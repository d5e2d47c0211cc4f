package handler

import (
	"strings"

	"m8translate/internal/oauth/service"
)

// CallbackRequest holds the OAuth callback parameters.
type CallbackRequest struct {
	Code             string `json:"code"`
	State            string `json:"state"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (r *CallbackRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
	r.State = strings.TrimSpace(r.State)
	r.Error = strings.TrimSpace(r.Error)
	r.ErrorDescription = strings.TrimSpace(r.ErrorDescription)
}

func (r *CallbackRequest) ToCommand() service.CallbackCommand {
	return service.CallbackCommand{
		Code:             r.Code,
		State:            r.State,
		Error:            r.Error,
		ErrorDescription: r.ErrorDescription,
	}
}

// CallbackResponse confirms a connected company.
type CallbackResponse struct {
	Success     bool   `json:"success"`
	CompanyUUID string `json:"company_uuid"`
	CompanyName string `json:"company_name"`
	Message     string `json:"message"`
}
