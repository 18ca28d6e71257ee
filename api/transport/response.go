package transport

import "github.com/fastygo/workdesk/domain"

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ListMeta describes a collection response: how many items it holds, which date
// filter selected them and the page it covers.
type ListMeta struct {
	Count  int               `json:"count"`
	Filter domain.DateFilter `json:"filter"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewList returns a success envelope for one page of a filtered collection.
func NewList(data interface{}, count int, filter domain.DateFilter, limit, offset int) Envelope {
	return NewSuccess(data, ListMeta{Count: count, Filter: filter, Limit: limit, Offset: offset})
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}
