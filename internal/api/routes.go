package api

import (
	"net/http"

	"github.com/JaimeStill/zeroecho/pkg/routes"
)

// Groups returns the route groups of every domain handler.
func Groups(domain *Domain) []routes.Group {
	return []routes.Group{
		domain.Articles.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		domain.Batches.Handler().Routes(),
		domain.Editions.Handler().Routes(),
		domain.Recovery.Handler().Routes(),
		domain.Intake.Handler().Routes(),
	}
}

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(mux, Groups(domain)...)
}
