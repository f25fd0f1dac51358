package httptransport

import "phoneverify/internal/lookup/service"

const codeBatchAborted = "batch_aborted"

// BatchRequest is the body of POST /v1/phone-numbers/validity.
type BatchRequest struct {
	PhoneNumbers []string `json:"phone_numbers" validate:"required,min=1,max=100,dive,required,max=64"`
}

// ValidityResponse reports the outcome of one check.
type ValidityResponse struct {
	PhoneNumber string            `json:"phone_number"`
	Valid       bool              `json:"valid"`
	Outcome     string            `json:"outcome"`
	Cached      bool              `json:"cached"`
	Messages    map[string]string `json:"messages"`
}

type BatchResponse struct {
	Results []ValidityResponse `json:"results"`
}

func fromResult(res service.Result) ValidityResponse {
	msgs := res.Messages
	if msgs == nil {
		msgs = map[string]string{}
	}
	return ValidityResponse{
		PhoneNumber: res.PhoneNumber,
		Valid:       res.Valid,
		Outcome:     string(res.Outcome),
		Cached:      res.Cached,
		Messages:    msgs,
	}
}
