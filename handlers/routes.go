package handlers

import "github.com/labstack/echo/v4"

// Register mounts the protected API routes on g.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/penalties", h.Penalties)

	g.GET("/regattas", h.ListRegattas)
	g.POST("/regattas", h.CreateRegatta)
	g.GET("/regattas/:id", h.GetRegatta)
	g.PUT("/regattas/:id", h.UpdateRegatta)
	g.DELETE("/regattas/:id", h.DeleteRegatta)
	g.PUT("/regattas/:id/discards", h.SetDiscards)
	g.GET("/regattas/:id/standings", h.Standings)

	g.GET("/regattas/:id/boats", h.ListBoats)
	g.POST("/regattas/:id/boats", h.CreateBoat)
	g.PUT("/boats/:id", h.UpdateBoat)
	g.DELETE("/boats/:id", h.DeleteBoat)

	g.GET("/regattas/:id/races", h.ListRaces)
	g.POST("/regattas/:id/races", h.CreateRace)
	g.PUT("/races/:id", h.UpdateRace)
	g.DELETE("/races/:id", h.DeleteRace)
	g.GET("/races/:id/results", h.RaceResults)

	g.GET("/races/:id/capture", h.GetCapture)
	g.DELETE("/races/:id/capture", h.CloseCapture)
	g.POST("/races/:id/capture/boats", h.CaptureAddBoat)
	g.DELETE("/races/:id/capture/boats/:boatID", h.CaptureRemoveBoat)
	g.POST("/races/:id/capture/reorder", h.CaptureReorder)
	g.PUT("/races/:id/capture/boats/:boatID/placement", h.CaptureSetPlacement)
	g.PUT("/races/:id/capture/boats/:boatID/penalty", h.CaptureSetPenalty)
	g.POST("/races/:id/complete", h.CompleteRace)
	g.POST("/races/:id/reopen", h.ReopenRace)
}
