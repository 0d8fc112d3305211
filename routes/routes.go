package routes

import (
	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/middleware"
	"github.com/Dosada05/league-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	leagueHandler *handlers.LeagueHandler,
	teamHandler *handlers.TeamHandler,
	calendarHandler *handlers.CalendarHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/leagues", func(r chi.Router) {
		// Публичные маршруты для просмотра лиг и календаря
		r.Get("/", leagueHandler.List)
		r.Get("/{leagueID}", leagueHandler.GetByID)
		r.Get("/{leagueID}/teams", leagueHandler.ListTeams)
		r.Get("/{leagueID}/calendar", calendarHandler.GetCalendar)

		// Защищенные маршруты только для организаторов
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))

			r.Post("/", leagueHandler.Create)
			r.Put("/{leagueID}", leagueHandler.Update)
			r.Delete("/{leagueID}", leagueHandler.Delete)
			r.Post("/{leagueID}/logo", leagueHandler.UploadLogo)

			r.Post("/{leagueID}/calendar/generate", calendarHandler.Generate)
			r.Post("/{leagueID}/calendar/save", calendarHandler.GenerateAndSave)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))

		r.Post("/{matchID}/assign-date", calendarHandler.AssignDate)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetByID)
		r.Get("/{teamID}/availability", teamHandler.GetAvailability)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", teamHandler.Create)
			r.Put("/{teamID}", teamHandler.Update)
			r.Delete("/{teamID}", teamHandler.Delete)
			r.Post("/{teamID}/members", teamHandler.AddMember)
			r.Delete("/{teamID}/members/{userID}", teamHandler.RemoveMember)
			r.Put("/{teamID}/availability", teamHandler.SetAvailability)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)
		})
	})

	router.Get("/ws/leagues/{leagueID}", webSocketHandler.ServeWs)
}
