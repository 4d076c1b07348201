package mux

import (
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"time"
	"whist-server/internal/jwt"
	"whist-server/internal/util"
	"whist-server/pkg/model"

	"github.com/badoux/checkmail"
	"github.com/gorilla/mux"
)

type userPayload struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

// userWithEmail should only be returned in an admin context, or for the requesting user
type userWithEmail struct {
	*model.User
	Email string `json:"email"`
}

var validNicknameRx = regexp.MustCompile(`^[\p{L}\p{N} ]{0,40}\z`)

func (m *Mux) postUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var up userPayload
		if !decodeRequest(w, r, &up) {
			return
		}

		if err := m.recaptcha.Verify(up.Token); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		if !validNicknameRx.MatchString(up.Nickname) {
			writeJSONError(w, http.StatusBadRequest, errors.New("nickname must only contain letters, numbers, and spaces, and be 40 characters or less"))
			return
		}

		if err := checkmail.ValidateFormat(up.Email); err != nil {
			writeJSONError(w, http.StatusBadRequest, errors.New("missing or invalid email address"))
			return
		}

		if len(up.Password) < 6 {
			writeJSONError(w, http.StatusBadRequest, errors.New("password must be 6 or more characters"))
			return
		}

		addr := remoteAddr(r)
		at, err := model.LastUserCreatedAt(r.Context(), addr)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		if time.Since(at) < m.config.userCreateDelay {
			writeJSONError(w, http.StatusBadRequest, errors.New("please wait before creating another user"))
			return
		}

		nickname := up.Nickname
		if nickname == "" {
			nickname = util.GetRandomName()
		}

		user, err := model.CreateUser(r.Context(), up.Email, nickname, up.Password, addr)
		if err != nil {
			if err == model.ErrDuplicateKey {
				writeJSONError(w, http.StatusBadRequest, errors.New("email address is already taken"))
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusCreated, &userWithEmail{
			User:  user,
			Email: user.Email,
		})
	}
}

type postUserAuthResponse struct {
	JWT  string        `json:"jwt"`
	User userWithEmail `json:"user"`
}

func (m *Mux) postUserAuth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var up userPayload
		if !decodeRequest(w, r, &up) {
			return
		}

		user, err := model.GetUserByEmailAndPassword(r.Context(), up.Email, up.Password)
		if err != nil {
			if err == model.ErrInvalidEmailOrPassword {
				writeJSONError(w, http.StatusUnauthorized, err)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		signedToken, err := jwt.Sign(user.ID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, postUserAuthResponse{
			JWT: signedToken,
			User: userWithEmail{
				User:  user,
				Email: user.Email,
			},
		})
	}
}

func (m *Mux) getUserAuthJWT() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		signedToken := mux.Vars(r)["jwt"]
		id, err := jwt.ValidUserID(signedToken)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, err)
			return
		}

		user, err := model.GetUserByID(r.Context(), id)
		if err != nil {
			if err == sql.ErrNoRows {
				writeJSONError(w, http.StatusNotFound, errors.New("user does not exist"))
			} else {
				writeJSONError(w, http.StatusInternalServerError, err)
			}

			return
		}

		writeJSON(w, http.StatusOK, userWithEmail{
			User:  user,
			Email: user.Email,
		})
	}
}

func (m *Mux) getUserPlayers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := m.service.Players(r.Context(), userID(r))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, players)
	}
}

// note: this requires admin auth
func (m *Mux) getUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		users, err := model.GetUsersWithSearch(r.Context(), r.FormValue("search"), offset, limit)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		adminUsers := make([]*userWithEmail, len(users))
		for i, u := range users {
			adminUsers[i] = &userWithEmail{
				User:  u,
				Email: u.Email,
			}
		}

		writeJSON(w, http.StatusOK, adminUsers)
	}
}
