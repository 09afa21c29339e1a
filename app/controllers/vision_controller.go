package controllers

import (
	"time"

	"github.com/shashiranjanraj/furnivision/app/services"
	"github.com/shashiranjanraj/furnivision/pkg/ctx"
	"github.com/shashiranjanraj/furnivision/pkg/sse"
)

// VisionController serves room analysis and placement renders.
type VisionController struct {
	catalog    *services.CatalogService
	vision     *services.VisionService
	visualizer *services.VisualizerService
}

func NewVisionController(catalog *services.CatalogService, vision *services.VisionService, visualizer *services.VisualizerService) *VisionController {
	return &VisionController{catalog: catalog, vision: vision, visualizer: visualizer}
}

type analyzeInput struct {
	Image string `json:"image" validate:"required,base64"`
}

type placementInput struct {
	ProductID string `json:"productId" validate:"required"`
	RoomImage string `json:"roomImage" validate:"required,base64"`
}

// Analyze handles POST /api/room/analyze.
func (h *VisionController) Analyze(c *ctx.Context) {
	var in analyzeInput
	if !c.BindJSON(&in) {
		return
	}
	analysis, err := h.vision.AnalyzeRoom(c.Context(), in.Image)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(analysis)
}

// Start handles POST /api/visualizations. The render runs in the
// background; clients poll Show or follow Events.
func (h *VisionController) Start(c *ctx.Context) {
	var in placementInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := h.catalog.Get(in.ProductID)
	if err != nil {
		c.NotFound("Product not found")
		return
	}

	state, err := h.visualizer.Start(c.Context(), owner(c), in.RoomImage, p)
	if err != nil {
		fail(c, err)
		return
	}
	c.SetHeader("Location", "/api/visualizations/"+state.ID)
	c.Accepted(state)
}

// Show handles GET /api/visualizations/{id}.
func (h *VisionController) Show(c *ctx.Context) {
	state, err := h.visualizer.Job(c.Param("id"), owner(c))
	if err != nil {
		c.NotFound("Visualization not found")
		return
	}
	c.Success(state)
}

// Events handles GET /api/visualizations/{id}/events as a server-sent event
// stream: "progress" on every change, then one "done" or "failed".
func (h *VisionController) Events(c *ctx.Context) {
	id, login := c.Param("id"), owner(c)
	state, changes, cancel, err := h.visualizer.Subscribe(id, login)
	if err != nil {
		c.NotFound("Visualization not found")
		return
	}
	defer cancel()

	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}
	stream.Retry(int((2 * time.Second).Milliseconds()))

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		if state.Terminal() {
			stream.Send(state.Status, state)
			return
		}
		if err := stream.Send("progress", state); err != nil {
			return
		}
		if !waitChange(c, changes, heartbeat.C, stream) {
			return
		}
		if state, err = h.visualizer.Job(id, login); err != nil {
			return
		}
	}
}

// waitChange blocks until the job changes, writing keepalives meanwhile.
// It returns false once the client has gone.
func waitChange(c *ctx.Context, changes <-chan struct{}, beat <-chan time.Time, stream *sse.Stream) bool {
	for {
		select {
		case <-c.R.Context().Done():
			return false
		case <-beat:
			stream.Comment("keepalive")
			if stream.IsClosed() {
				return false
			}
		case <-changes:
			return true
		}
	}
}
