package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	mw "github.com/padraicbc/regattaapi/middleware"
)

// TokenTTL is how long a signin token stays valid.
const TokenTTL = 30 * 24 * time.Hour

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HashPasswordForUser validates username/password input and returns a bcrypt hash for storage.
func HashPasswordForUser(username, password string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", errors.New("username is required")
	}
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashedPassword), nil
}

// Signin validates credentials and returns a JWT token valid for 30 days.
func (h *Handler) Signin(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	creds.Username = strings.TrimSpace(creds.Username)

	user, err := h.store.GetUser(c.Request().Context(), creds.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "incorrect username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	tokenString, err := mw.NewToken(creds.Username, h.JWTKey, time.Now().Add(TokenTTL))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"token": tokenString})
}
