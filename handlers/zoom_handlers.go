package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/erinovdaniil/onboarding/internal/effects"
	"github.com/erinovdaniil/onboarding/utils"
)

// SaveZoomRequest stores or clears the zoom region of a project.
type SaveZoomRequest struct {
	Region   *effects.Region `json:"zoomConfig"`
	Duration float64         `json:"duration" validate:"gte=0"`
}

// NewRegionRequest creates a region at the playback position.
type NewRegionRequest struct {
	Time     float64 `json:"time" validate:"gte=0"`
	Duration float64 `json:"duration" validate:"gt=0"`
}

// SampleRequest evaluates a region at one or more times.
type SampleRequest struct {
	Region effects.Region `json:"region"`
	Times  []float64      `json:"times" validate:"required,min=1,max=1000"`
}

// DragRequest applies one pointer move of a timeline drag.
type DragRequest struct {
	Mode       string         `json:"mode" validate:"required,oneof=move resize-left resize-right"`
	Region     effects.Region `json:"region"`
	AnchorX    float64        `json:"anchorX"`
	PointerX   float64        `json:"pointerX"`
	TrackWidth float64        `json:"trackWidth" validate:"gt=0"`
	Duration   float64        `json:"duration" validate:"gt=0"`
}

// DetectRequest suggests zoom regions from a per-frame cursor track.
type DetectRequest struct {
	// Positions holds one cursor position per frame, null where the cursor
	// was not found.
	Positions       []*effects.Point `json:"positions" validate:"required,max=216000"`
	FPS             float64          `json:"fps" validate:"gt=0,lte=240"`
	FrameWidth      float64          `json:"frameWidth" validate:"gte=0"`
	FrameHeight     float64          `json:"frameHeight" validate:"gte=0"`
	StillnessPixels float64          `json:"stillnessThreshold" validate:"gte=0"`
	StillFrames     int              `json:"stillnessFrames" validate:"gte=0"`
	MinGapFrames    int              `json:"minGapFrames" validate:"gte=0"`
	Magnification   float64          `json:"zoomLevel" validate:"omitempty,gte=1,lte=3"`
}

var dragModes = map[string]effects.DragMode{
	"move":         effects.Move,
	"resize-left":  effects.ResizeLeft,
	"resize-right": effects.ResizeRight,
}

// GetZoomConfig godoc
// @Summary Get the zoom region
// @Tags effects
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} effects.Region
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{projectId}/zoom [get]
func (h *ApplicationHandler) GetZoomConfig(c *fiber.Ctx) error {
	region, err := h.Store.GetZoomConfig(c.UserContext(), c.Params("projectId"))
	if err != nil {
		return h.respondWithStoreError(c, err, "project")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"zoomConfig": region})
}

// SaveZoomConfig godoc
// @Summary Save the zoom region
// @Description Normalizes and stores the zoom region. A null zoomConfig clears it.
// @Tags effects
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param body body SaveZoomRequest true "Zoom region"
// @Success 200 {object} effects.Region
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{projectId}/zoom [put]
func (h *ApplicationHandler) SaveZoomConfig(c *fiber.Ctx) error {
	req := new(SaveZoomRequest)
	if ok, err := h.parseBody(c, req); !ok {
		return err
	}
	var region *effects.Region
	if req.Region != nil {
		r := req.Region.Normalize(req.Duration)
		region = &r
	}
	if err := h.Store.SaveZoomConfig(c.UserContext(), c.Params("projectId"), region); err != nil {
		return h.respondWithStoreError(c, err, "project")
	}
	return utils.RespondWithMessage(c, fiber.StatusOK, "Zoom configuration saved", fiber.Map{"zoomConfig": region})
}

// NewZoomRegion godoc
// @Summary New zoom region at a position
// @Tags effects
// @Accept json
// @Produce json
// @Param body body NewRegionRequest true "Playback position and duration"
// @Success 200 {object} effects.Region
// @Router /api/v1/effects/region [post]
func (h *ApplicationHandler) NewZoomRegion(c *fiber.Ctx) error {
	req := new(NewRegionRequest)
	if ok, err := h.parseBody(c, req); !ok {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, effects.NewRegionAt(req.Time, req.Duration))
}

// SampleZoom godoc
// @Summary Sample the zoom transform
// @Description Evaluates the magnification and center of a region at each requested time.
// @Tags effects
// @Accept json
// @Produce json
// @Param body body SampleRequest true "Region and times"
// @Success 200 {array} effects.Transform
// @Router /api/v1/effects/sample [post]
func (h *ApplicationHandler) SampleZoom(c *fiber.Ctx) error {
	req := new(SampleRequest)
	if ok, err := h.parseBody(c, req); !ok {
		return err
	}
	out := make([]effects.Transform, 0, len(req.Times))
	for _, t := range req.Times {
		out = append(out, effects.Sample(req.Region, t))
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, out)
}

// DragZoom godoc
// @Summary Apply a timeline drag
// @Description Moves or resizes a region by the pointer offset since the drag began.
// @Tags effects
// @Accept json
// @Produce json
// @Param body body DragRequest true "Drag state"
// @Success 200 {object} effects.Region
// @Router /api/v1/effects/drag [post]
func (h *ApplicationHandler) DragZoom(c *fiber.Ctx) error {
	req := new(DragRequest)
	if ok, err := h.parseBody(c, req); !ok {
		return err
	}
	session := effects.BeginDrag(dragModes[req.Mode], req.AnchorX, req.Region)
	return utils.RespondWithJSON(c, fiber.StatusOK, session.Apply(req.PointerX, req.TrackWidth, req.Duration))
}

// DetectZoom godoc
// @Summary Suggest zoom regions
// @Description Finds the moments the cursor rests and returns a zoom region centered on each.
// @Tags effects
// @Accept json
// @Produce json
// @Param body body DetectRequest true "Cursor track"
// @Success 200 {array} effects.Region
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/effects/detect [post]
func (h *ApplicationHandler) DetectZoom(c *fiber.Ctx) error {
	req := new(DetectRequest)
	if ok, err := h.parseBody(c, req); !ok {
		return err
	}
	regions := effects.DetectZoomMoments(req.Positions, req.FPS, effects.DetectOptions{
		StillnessPixels: req.StillnessPixels,
		StillFrames:     req.StillFrames,
		MinGapFrames:    req.MinGapFrames,
		FrameWidth:      req.FrameWidth,
		FrameHeight:     req.FrameHeight,
		Magnification:   req.Magnification,
	})
	h.Logger.WithField("moments", len(regions)).Debug("zoom moments detected")
	return utils.RespondWithJSON(c, fiber.StatusOK, regions)
}
