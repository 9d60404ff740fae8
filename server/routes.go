package server

const (
	RouteIndex       = "/"
	RouteCallback    = "/callback"
	RouteGetMetadata = "/getmetadata"
	RouteSaveServer  = "/saveserver"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.withSession(s.IndexHandler()))
	s.RegisterRouteFunc("POST /{$}", s.withSession(s.ActionHandler()))
	s.RegisterRouteFunc("GET "+RouteCallback, s.withSession(s.CallbackHandler()))
	s.RegisterRouteFunc("POST "+RouteGetMetadata, s.withSession(s.GetMetadataHandler()))
	s.RegisterRouteFunc("POST "+RouteSaveServer, s.withSession(s.SaveServerHandler()))
}
