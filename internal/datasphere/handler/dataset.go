package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/datasphere/internal/datasphere/biz"
	"github.com/kart-io/datasphere/internal/pkg/httputils"
	"github.com/kart-io/datasphere/pkg/utils/response"
)

// DatasetHandler handles dataset HTTP requests.
type DatasetHandler struct {
	svc *biz.DatasetService
}

// NewDatasetHandler creates a new DatasetHandler.
func NewDatasetHandler(svc *biz.DatasetService) *DatasetHandler {
	return &DatasetHandler{svc: svc}
}

// CreateDatasetRequest is the request body for creating a dataset.
type CreateDatasetRequest struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Size        *float64 `json:"size" validate:"omitempty,gte=0"`
	Tags        []string `json:"tags"`
}

// UpdateDatasetRequest is the request body for a partial dataset update.
// Omitted fields are left unchanged; tags, when present, replace the set.
type UpdateDatasetRequest struct {
	Title       *string  `json:"title"`
	URL         *string  `json:"url"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Size        *float64 `json:"size" validate:"omitempty,gte=0"`
	Tags        []string `json:"tags"`
}

// VerifyResponse is returned by the verification toggle.
type VerifyResponse struct {
	Message string      `json:"message"`
	Dataset interface{} `json:"dataset"`
}

// List handles GET /datasets.
func (h *DatasetHandler) List(c *gin.Context) {
	q := biz.DatasetQuery{
		Search:          c.Query("search"),
		Category:        c.Query("category"),
		Tag:             c.Query("tag"),
		MinSize:         queryFloat(c, "minSize"),
		MaxSize:         queryFloat(c, "maxSize"),
		VerifiedOnly:    queryBool(c, "verified"),
		OrderByLikes:    queryBool(c, "orderByLikes"),
		OrderByComments: queryBool(c, "orderByComments"),
		Ascending:       c.Query("orderByDate") == "asc",
		Page:            queryInt(c, "page"),
		Limit:           queryInt(c, "limit"),
	}

	r, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, response.Page(r.Items, r.Total, r.Page, r.Limit))
}

// Create handles POST /datasets.
func (h *DatasetHandler) Create(c *gin.Context) {
	var req CreateDatasetRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.svc.Create(c.Request.Context(), subject(c), &biz.DatasetInput{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Category:    req.Category,
		Size:        req.Size,
		Tags:        req.Tags,
	})
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteCreated(c, nil, response.Data(d))
}

// Get handles GET /datasets/:id.
func (h *DatasetHandler) Get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, response.Data(d))
}

// Update handles PATCH /datasets/:id.
func (h *DatasetHandler) Update(c *gin.Context) {
	var req UpdateDatasetRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.svc.Update(c.Request.Context(), subject(c), c.Param("id"), &biz.DatasetPatch{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Category:    req.Category,
		Size:        req.Size,
		Tags:        req.Tags,
	})
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, response.Data(d))
}

// Delete handles DELETE /datasets/:id.
func (h *DatasetHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), subject(c), c.Param("id")); err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, response.Message("Dataset deleted successfully"))
}

// ToggleVerify handles POST /datasets/:id/verify.
func (h *DatasetHandler) ToggleVerify(c *gin.Context) {
	d, err := h.svc.ToggleVerify(c.Request.Context(), subject(c), c.Param("id"))
	if err != nil {
		httputils.WriteError(c, err)
		return
	}

	msg := "Dataset is now unverified"
	if d.IsVerified {
		msg = "Dataset is now verified"
	}
	httputils.WriteResponse(c, nil, &VerifyResponse{Message: msg, Dataset: d})
}

// Stats handles GET /datasets/stats.
func (h *DatasetHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	httputils.WriteResponse(c, err, stats)
}
