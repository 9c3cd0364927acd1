package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSelectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "selectPhoto",
		Method:      http.MethodPut,
		Path:        "/api/v1/selection/{id}",
		Summary:     "Select photo",
		Description: "Adds a photo to the multi-select set",
		Tags:        []string{"Selection"},
	}, s.handleSelectPhoto)

	huma.Register(s.api, huma.Operation{
		OperationID: "deselectPhoto",
		Method:      http.MethodDelete,
		Path:        "/api/v1/selection/{id}",
		Summary:     "Deselect photo",
		Description: "Removes a photo from the multi-select set",
		Tags:        []string{"Selection"},
	}, s.handleDeselectPhoto)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSelection",
		Method:      http.MethodGet,
		Path:        "/api/v1/selection",
		Summary:     "Get selection",
		Description: "Returns the selected photo IDs in stable order",
		Tags:        []string{"Selection"},
	}, s.handleGetSelection)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearSelection",
		Method:      http.MethodDelete,
		Path:        "/api/v1/selection",
		Summary:     "Clear selection",
		Description: "Empties the multi-select set",
		Tags:        []string{"Selection"},
	}, s.handleClearSelection)
}

// SelectionResponse contains the current multi-select set.
type SelectionResponse struct {
	IDs []string `json:"ids" doc:"Selected photo IDs"`
}

// SelectionOutput wraps the selection response for Huma.
type SelectionOutput struct {
	Body SelectionResponse
}

func (s *Server) handleSelectPhoto(_ context.Context, input *PhotoIDInput) (*MessageOutput, error) {
	s.services.Session.Select(input.ID)
	return &MessageOutput{Body: MessageResponse{Message: "Photo selected"}}, nil
}

func (s *Server) handleDeselectPhoto(_ context.Context, input *PhotoIDInput) (*MessageOutput, error) {
	s.services.Session.Deselect(input.ID)
	return &MessageOutput{Body: MessageResponse{Message: "Photo deselected"}}, nil
}

func (s *Server) handleGetSelection(_ context.Context, _ *struct{}) (*SelectionOutput, error) {
	ids := s.services.Session.Selection()
	return &SelectionOutput{Body: SelectionResponse{IDs: ids}}, nil
}

func (s *Server) handleClearSelection(_ context.Context, _ *struct{}) (*MessageOutput, error) {
	s.services.Session.ClearSelection()
	return &MessageOutput{Body: MessageResponse{Message: "Selection cleared"}}, nil
}
