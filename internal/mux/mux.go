package mux

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
	"whist-server/internal/config"
	"whist-server/internal/jwt"
	"whist-server/pkg/model"
	"whist-server/pkg/room"
	"whist-server/pkg/scorekeeper"

	gmux "github.com/gorilla/mux"
)

type ctxKey int

const (
	ctxUserIDKey ctxKey = iota
	ctxUserKey
)

// UserIDHeader is set on the authenticated responses
const UserIDHeader = "Whist-UserID"

const uuidPattern = "{id:(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}}"

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	config    muxConfig
	version   string
	recaptcha recaptcha
	pitBoss   *room.PitBoss
	service   *scorekeeper.Service

	// store for testing purposes
	authRouter  *gmux.Router
	adminRouter *gmux.Router
}

type muxConfig struct {
	// userCreateDelay is the minimum duration between two user create events from a single remote address
	userCreateDelay time.Duration
}

// NewMux returns a new HTTP mux
// The live scoreboard is registered as a notifier of service
func NewMux(version string, service *scorekeeper.Service) *Mux {
	pitBoss := room.NewPitBoss()
	pitBoss.StartShift()
	service.AddNotifier(pitBoss)

	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		pitBoss: pitBoss,
		service: service,
		config: muxConfig{
			userCreateDelay: time.Second * time.Duration(config.Instance().UserCreateDelay),
		},
		recaptcha: newRecaptcha(),
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	this.adminRouter = this.authRouter.NewRoute().Subrouter()
	this.adminRouter.Use(this.adminMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodPost).Path("/user").Handler(this.postUser())
		r.Methods(http.MethodPost).Path("/user/auth").Handler(this.postUserAuth())
		r.Methods(http.MethodGet).Path("/user/auth/{jwt:.*}").Handler(this.getUserAuthJWT())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		r.Methods(http.MethodGet).Path("/user/players").Handler(this.getUserPlayers())

		r.Methods(http.MethodPost).Path("/game").Handler(this.postGame())
		r.Methods(http.MethodGet).Path("/game").Handler(this.getGames())
		r.Methods(http.MethodGet).Path("/game/current").Handler(this.getGameCurrent())
		r.Methods(http.MethodDelete).Path("/game/current").Handler(this.deleteGameCurrent())
		r.Methods(http.MethodGet).Path("/game/last-terminated").Handler(this.getGameLastTerminated())

		gr := r.PathPrefix("/game/" + uuidPattern).Subrouter()
		gr.Methods(http.MethodGet).Path("").Handler(this.getGameID())
		gr.Methods(http.MethodDelete).Path("").Handler(this.deleteGameID())
		gr.Methods(http.MethodGet).Path("/next-round").Handler(this.getGameIDNextRound())
		gr.Methods(http.MethodGet).Path("/ranking").Handler(this.getGameIDRanking())
		gr.Methods(http.MethodGet).Path("/scores").Handler(this.getGameIDScores())
		gr.Methods(http.MethodPut).Path("/draft").Handler(this.putGameIDDraft())
		gr.Methods(http.MethodPost).Path("/round/{index:[0-9]+}").Handler(this.postGameIDRound())
		gr.Methods(http.MethodGet).Path("/ws").Handler(this.getGameIDWS())
	}

	// requires admin access
	// depends on authMiddleware
	{
		r := this.adminRouter
		r.Methods(http.MethodGet).Path("/user").Handler(this.getUsers())
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		id, err := jwt.ValidUserID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxUserIDKey, id)
		w.Header().Set(UserIDHeader, strconv.FormatInt(id, 10))
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// adminMiddleware requires authMiddleware to execute first
func (m *Mux) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := model.GetUserByID(r.Context(), userID(r))
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		if !user.IsSiteAdmin {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxUserKey, user)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// userID returns the ID of the authenticated user
func userID(r *http.Request) int64 {
	return r.Context().Value(ctxUserIDKey).(int64)
}
