// Package server is the HTTP surface of the UDAP client app: the action
// dispatch endpoint, the authorization-code callback, server selection, and
// the add-server/save-server forms. All orchestration lives in the flows
// service; handlers only translate requests and render results.
package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/udap-tools/udap-client-app/fhir"
	"github.com/udap-tools/udap-client-app/flows"
	"github.com/udap-tools/udap-client-app/internal/config"
	"github.com/udap-tools/udap-client-app/sessions"
)

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	flows    *flows.Service
	sessions sessions.Repo
	gateway  *fhir.Gateway

	// pending add-server form values, pre-filled by the metadata probe
	pendingMu sync.Mutex
	pending   newServerForm
}

func New(cfg config.Config, flowService *flows.Service, sessionRepo sessions.Repo) (*Server, error) {
	if flowService == nil {
		return nil, fmt.Errorf("[Server New] flow service is required")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("[Server New] session repo is required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		flows:    flowService,
		sessions: sessionRepo,
		gateway:  fhir.NewGateway(),
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
