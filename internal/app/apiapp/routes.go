package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/Oohan21/utopia-drafts/internal/services/auth"
	listingsvc "github.com/Oohan21/utopia-drafts/internal/services/listing"
	mediasvc "github.com/Oohan21/utopia-drafts/internal/services/media"
	refsvc "github.com/Oohan21/utopia-drafts/internal/services/reference"
	"github.com/Oohan21/utopia-drafts/internal/transport/http/handlers"
)

type Dependencies struct {
	Registry   *listingsvc.Registry
	References refsvc.Source
	Previews   *mediasvc.MemoryPreviewer
	JWT        *authsvc.JWTManager
	Limits     mediasvc.Limits
	Logger     *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	draftHandler := handlers.NewDraftHandler(deps.Registry, deps.Logger)
	mediaHandler := handlers.NewMediaHandler(deps.Registry, deps.Limits)
	referenceHandler := handlers.NewReferenceHandler(deps.References)
	var verifier tokenVerifier
	if deps.JWT != nil {
		verifier = deps.JWT
	}
	authMW := AuthMiddleware(verifier, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Use(noStore)

		// Preview ids are unguessable and short-lived, so image tags can load them without a token.
		if deps.Previews != nil {
			previewHandler := handlers.NewPreviewHandler(deps.Previews, deps.Logger)
			r.Get("/previews/{handleID}", previewHandler.Get)
		}

		r.Group(func(r chi.Router) {
			r.Use(authMW)

			r.Get("/reference/cities", referenceHandler.Cities)
			r.Get("/reference/cities/{cityID}/subcities", referenceHandler.SubCities)
			r.Get("/reference/amenities", referenceHandler.Amenities)

			r.Post("/drafts", draftHandler.Start)
			r.Route("/drafts/{sessionID}", func(r chi.Router) {
				r.Get("/", draftHandler.Get)
				r.Delete("/", draftHandler.Discard)
				r.Patch("/fields", draftHandler.PatchFields)
				r.Put("/location", draftHandler.SetLocation)
				r.Post("/location/lookup", draftHandler.LookupLocation)
				r.Post("/media/images/reorder", mediaHandler.ReorderImages)
				r.Post("/media/{slot}", mediaHandler.Upload)
				r.Delete("/media/{slot}/{refID}", mediaHandler.Detach)
				r.Post("/save", draftHandler.Save)
				r.Post("/restore", draftHandler.Restore)
				r.Post("/submit", draftHandler.Submit)
			})
		})
	})
}
