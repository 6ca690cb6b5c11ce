package auth

import (
	"encoding/json"
	"net/http"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/httpx"
	"github.com/farmstack/farm-backend/internal/utils"
)

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}

	user, err := Register(db.DB, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.Success(w, http.StatusCreated, map[string]string{
		"uuid":     user.UUID,
		"username": user.Username,
	})
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}

	user, err := Login(db.DB, in.Username, in.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	token, err := CreateToken(user)
	if err != nil {
		httpx.Error(w, apperror.Internal(err))
		return
	}

	httpx.Success(w, http.StatusOK, map[string]string{"token": token})
}

func OAuthHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}

	claims, err := DecodeOAuthIDToken(in.IDToken)
	if err != nil {
		httpx.Error(w, apperror.Invalid("id_token", "invalid ID token"))
		return
	}

	user, err := OAuthSignIn(db.DB, claims)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	token, err := CreateToken(user)
	if err != nil {
		httpx.Error(w, apperror.Internal(err))
		return
	}

	httpx.Success(w, http.StatusOK, map[string]string{"token": token})
}

func MeHandler(w http.ResponseWriter, r *http.Request) {
	userUUID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, apperror.Unauthorized("incorrect credentials"))
		return
	}

	user, err := GetByUUID(db.DB, userUUID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, user)
}

func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userUUID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, apperror.Unauthorized("incorrect credentials"))
		return
	}

	var in ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}

	user, err := UpdateProfile(db.DB, userUUID, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, user)
}
