package websocket

import "github.com/gin-gonic/gin"

// Path is where the upgrade endpoint is mounted.
const Path = "/ws"

// Initialize attaches the upgrade endpoint and its stats route.
func (s *Service) Initialize(r gin.IRoutes) {
	r.GET(Path, s.Connect)
	r.GET(Path+"/stats", s.Stats)
}
