package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/photokeepapp/photokeep-server/internal/domain"
	"github.com/photokeepapp/photokeep-server/internal/search"
	"github.com/photokeepapp/photokeep-server/internal/service"
)

func (s *Server) registerPhotoRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "uploadPhotos",
		Method:      http.MethodPost,
		Path:        "/api/v1/photos",
		Summary:     "Upload photos",
		Description: "Uploads a batch of photos, deduplicating by content",
		Tags:        []string{"Photos"},
	}, s.handleUploadPhotos)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPhotos",
		Method:      http.MethodGet,
		Path:        "/api/v1/photos",
		Summary:     "List photos",
		Description: "Returns the gallery, optionally filtered by name and tags",
		Tags:        []string{"Photos"},
	}, s.handleListPhotos)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchPhotos",
		Method:      http.MethodGet,
		Path:        "/api/v1/photos/search",
		Summary:     "Search photos",
		Description: "Full-text search over photo names and tags",
		Tags:        []string{"Photos"},
	}, s.handleSearchPhotos)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPhoto",
		Method:      http.MethodGet,
		Path:        "/api/v1/photos/{id}",
		Summary:     "Get photo",
		Description: "Returns a photo's metadata",
		Tags:        []string{"Photos"},
	}, s.handleGetPhoto)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPhotoContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/photos/{id}/content",
		Summary:     "Download photo",
		Description: "Streams the stored photo payload",
		Tags:        []string{"Photos"},
	}, s.handleGetPhotoContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePhoto",
		Method:      http.MethodDelete,
		Path:        "/api/v1/photos/{id}",
		Summary:     "Delete photo",
		Description: "Deletes a photo; absent photos delete successfully",
		Tags:        []string{"Photos"},
	}, s.handleDeletePhoto)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePhotos",
		Method:      http.MethodPost,
		Path:        "/api/v1/photos/delete",
		Summary:     "Delete photos",
		Description: "Deletes photos one at a time, reporting per-photo failures",
		Tags:        []string{"Photos"},
	}, s.handleDeletePhotos)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Gallery stats",
		Description: "Returns photo counts for the active owner",
		Tags:        []string{"Photos"},
	}, s.handleGetStats)
}

// === DTOs ===

// UploadFileRequest is one file in an upload batch. Data is base64 in JSON.
type UploadFileRequest struct {
	Name       string    `json:"name" doc:"File name"`
	Type       string    `json:"type,omitempty" doc:"MIME type"`
	Data       []byte    `json:"data" doc:"File bytes, base64-encoded"`
	ModifiedAt time.Time `json:"modified_at,omitempty" doc:"File modification time"`
}

// UploadRequest is the request body for uploading photos.
type UploadRequest struct {
	Tags              string              `json:"tags,omitempty" doc:"Comma-separated tags applied to every file"`
	ConfirmDuplicates bool                `json:"confirm_duplicates,omitempty" doc:"Save files whose name matches an existing photo"`
	Files             []UploadFileRequest `json:"files" doc:"Files to upload"`
}

// UploadInput wraps the upload request for Huma.
type UploadInput struct {
	Body UploadRequest
}

// UploadOutput wraps the batch summary for Huma.
type UploadOutput struct {
	Body service.UploadSummary
}

// PhotoResponse contains photo metadata in API responses. The payload is
// never inlined; it is streamed from the content endpoint.
type PhotoResponse struct {
	ID           string    `json:"id" doc:"Photo ID"`
	Name         string    `json:"name" doc:"Display name"`
	OriginalName string    `json:"original_name,omitempty" doc:"Name at upload time"`
	Size         int64     `json:"size" doc:"Payload size in bytes"`
	MimeType     string    `json:"mime_type,omitempty" doc:"MIME type"`
	Tags         []string  `json:"tags,omitempty" doc:"Tags"`
	UploadedAt   time.Time `json:"uploaded_at" doc:"Upload time"`
	BlurHash     string    `json:"blurhash,omitempty" doc:"Gallery placeholder hash"`
	Thumbnail    []byte    `json:"thumbnail,omitempty" doc:"Thumbnail JPEG, base64-encoded"`
}

func photoResponse(photo *domain.Photo) PhotoResponse {
	return PhotoResponse{
		ID:           photo.ID,
		Name:         photo.Name,
		OriginalName: photo.OriginalName,
		Size:         photo.Size,
		MimeType:     photo.MimeType,
		Tags:         photo.Tags,
		UploadedAt:   photo.UploadedAt,
		BlurHash:     photo.BlurHash,
		Thumbnail:    photo.Thumbnail,
	}
}

// ListPhotosInput contains the gallery filters.
type ListPhotosInput struct {
	Query string `query:"query" doc:"Name substring filter"`
	Tags  string `query:"tags" doc:"Comma-separated tag substring filters, any match"`
}

// ListPhotosResponse contains the filtered gallery.
type ListPhotosResponse struct {
	Photos []PhotoResponse `json:"photos" doc:"Matching photos"`
	Total  int             `json:"total" doc:"Number of matching photos"`
}

// ListPhotosOutput wraps the gallery response for Huma.
type ListPhotosOutput struct {
	Body ListPhotosResponse
}

// SearchPhotosInput contains the search query.
type SearchPhotosInput struct {
	Q string `query:"q" doc:"Search query"`
}

// SearchPhotosOutput wraps search results for Huma.
type SearchPhotosOutput struct {
	Body search.Result
}

// PhotoIDInput addresses a single photo.
type PhotoIDInput struct {
	ID string `path:"id" doc:"Photo ID"`
}

// PhotoOutput wraps a photo response for Huma.
type PhotoOutput struct {
	Body PhotoResponse
}

// PhotoContentOutput streams the raw payload.
type PhotoContentOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// DeletePhotosRequest is the request body for bulk deletion.
type DeletePhotosRequest struct {
	IDs []string `json:"ids" doc:"Photo IDs to delete"`
}

// DeletePhotosInput wraps the bulk delete request for Huma.
type DeletePhotosInput struct {
	Body DeletePhotosRequest
}

// DeletePhotosResponse reports the outcome per photo.
type DeletePhotosResponse struct {
	Deleted  int               `json:"deleted" doc:"Number of successful deletions"`
	Failures map[string]string `json:"failures,omitempty" doc:"Failure message per photo ID"`
}

// DeletePhotosOutput wraps the bulk delete response for Huma.
type DeletePhotosOutput struct {
	Body DeletePhotosResponse
}

// StatsOutput wraps gallery stats for Huma.
type StatsOutput struct {
	Body domain.GalleryStats
}

// === Handlers ===

func (s *Server) handleUploadPhotos(ctx context.Context, input *UploadInput) (*UploadOutput, error) {
	files := make([]service.UploadFile, len(input.Body.Files))
	for i, f := range input.Body.Files {
		files[i] = service.UploadFile{
			Name:       f.Name,
			MimeType:   f.Type,
			Data:       f.Data,
			ModifiedAt: f.ModifiedAt,
		}
	}

	summary, err := s.services.Upload.Upload(ctx, files, input.Body.Tags, input.Body.ConfirmDuplicates)
	if err != nil {
		return nil, err
	}
	return &UploadOutput{Body: *summary}, nil
}

func (s *Server) handleListPhotos(ctx context.Context, input *ListPhotosInput) (*ListPhotosOutput, error) {
	photos, err := s.services.Photo.List(ctx, input.Query, input.Tags)
	if err != nil {
		return nil, err
	}

	resp := make([]PhotoResponse, len(photos))
	for i, photo := range photos {
		resp[i] = photoResponse(photo)
	}
	return &ListPhotosOutput{Body: ListPhotosResponse{Photos: resp, Total: len(resp)}}, nil
}

func (s *Server) handleSearchPhotos(ctx context.Context, input *SearchPhotosInput) (*SearchPhotosOutput, error) {
	result, err := s.services.Photo.Search(ctx, input.Q)
	if err != nil {
		return nil, err
	}
	return &SearchPhotosOutput{Body: *result}, nil
}

func (s *Server) handleGetPhoto(ctx context.Context, input *PhotoIDInput) (*PhotoOutput, error) {
	photo, err := s.services.Photo.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PhotoOutput{Body: photoResponse(photo)}, nil
}

func (s *Server) handleGetPhotoContent(ctx context.Context, input *PhotoIDInput) (*PhotoContentOutput, error) {
	photo, err := s.services.Photo.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	contentType := photo.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &PhotoContentOutput{
		ContentType: contentType,
		Body:        photo.Payload,
	}, nil
}

func (s *Server) handleDeletePhoto(ctx context.Context, input *PhotoIDInput) (*MessageOutput, error) {
	if err := s.services.Photo.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Photo deleted"}}, nil
}

func (s *Server) handleDeletePhotos(ctx context.Context, input *DeletePhotosInput) (*DeletePhotosOutput, error) {
	failures, err := s.services.Photo.DeleteMany(ctx, input.Body.IDs)
	if err != nil {
		return nil, err
	}

	resp := DeletePhotosResponse{
		Deleted: len(input.Body.IDs) - len(failures),
	}
	if len(failures) > 0 {
		resp.Failures = make(map[string]string, len(failures))
		for photoID, failure := range failures {
			resp.Failures[photoID] = failure.Error()
		}
	}
	return &DeletePhotosOutput{Body: resp}, nil
}

func (s *Server) handleGetStats(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	stats, err := s.services.Photo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: stats}, nil
}
