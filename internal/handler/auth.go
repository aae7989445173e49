package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/chetan-code/taskrooms/internal/credential"
	"github.com/chetan-code/taskrooms/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/markbates/goth/gothic"
)

func getJWTKey() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// we are doing this to avoid collision with libraries
type contextKey string

const userKey contextKey = "currentUser"

// AuthMiddleware verifies the session cookie and injects the caller's
// identity into the request context. Protected handlers read the user
// from there - the core never touches ambient session state.
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session_token")
		if err != nil {
			HomeRedirect(w, r)
			return
		}

		claims, err := VerifyToken(cookie.Value)
		if err != nil {
			HomeRedirect(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// CurrentUser returns the identity placed in the context by AuthMiddleware.
func CurrentUser(r *http.Request) (*models.Claims, bool) {
	claims, ok := r.Context().Value(userKey).(*models.Claims)
	return claims, ok
}

func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		tmpl := template.Must(template.ParseFiles("templates/register.html"))
		tmpl.Execute(w, struct{ Error string }{})
		return
	}

	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")
	if username == "" || email == "" || password == "" {
		renderError(w, "templates/register.html", "All fields are required")
		return
	}

	if _, err := h.users.ByUsername(username); err == nil {
		renderError(w, "templates/register.html", "Username already exists")
		return
	}

	hash, err := credential.Set(password)
	if err != nil {
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	user, err := h.users.Create(username, email, *hash)
	if err != nil {
		slog.Error("user_creation_failed", "error", err)
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	h.startSession(w, r, user)
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	//show login page
	if r.Method == http.MethodGet {
		tmpl := template.Must(template.ParseFiles("templates/login.html"))
		tmpl.Execute(w, struct{ Error string }{})
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.users.ByEmail(email)
	// an OAuth-only account has no local hash and cannot form-login
	if err != nil || user.PasswordHash == "" ||
		!credential.Verify(&user.PasswordHash, password) {
		//never log the attempted password
		slog.Info("login_rejected", "email", email)
		renderError(w, "templates/login.html", "Invalid Credential")
		return
	}

	h.startSession(w, r, user)
}

func (h *Handler) BeginAuth(w http.ResponseWriter, r *http.Request) {
	//gothic look for provider query by default
	//forcing to use google
	q := r.URL.Query()
	q.Add("provider", "google")
	r.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(w, r)
}

func (h *Handler) AuthCallbackHandler(w http.ResponseWriter, r *http.Request) {
	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	username := gothUser.Name
	if username == "" {
		username = gothUser.Email
	}
	user, err := h.users.UpsertByEmail(username, gothUser.Email)
	if err != nil {
		slog.Error("oauth_user_upsert_failed", "error", err)
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	h.startSession(w, r, user)
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	// clear session cookies
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true, //js cant touch it
	})

	//clear gothic session
	gothic.Logout(w, r)
	HomeRedirect(w, r)
}

// startSession issues the JWT cookie and lands the user on the index.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user models.User) {
	token, err := GenerateJWT(user)
	if err != nil {
		slog.Error("jwt_generation_failed", "error", err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	//token is ready - set cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true, //not visible to JS [IMP for security]
		//Secure: true,//enable it for HTTPS in production
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		HomeRedirect(w, r)
		return
	}

	if r.Method == http.MethodPost {
		username := r.FormValue("username")
		email := r.FormValue("email")
		password := r.FormValue("password")
		confirm := r.FormValue("confirm_password")

		if password != confirm {
			renderError(w, "templates/profile.html", "Passwords do not match")
			return
		}

		// empty password keeps the old one
		hash := ""
		if password != "" {
			hashed, err := credential.Set(password)
			if err != nil {
				http.Error(w, "Profile update failed", http.StatusInternalServerError)
				return
			}
			hash = *hashed
		}

		err := h.users.UpdateProfile(claims.UserID, username, email, hash)
		if err != nil {
			slog.Error("profile_update_failed", "error", err, "user_id", claims.UserID)
			http.Error(w, "Profile update failed", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	user, err := h.users.ByID(claims.UserID)
	if err != nil {
		HomeRedirect(w, r)
		return
	}
	tmpl := template.Must(template.ParseFiles("templates/profile.html"))
	tmpl.Execute(w, struct {
		Username string
		Email    string
		Error    string
	}{Username: user.Username, Email: user.Email})
}

// HELPER FUNCTION
func GenerateJWT(user models.User) (string, error) {
	expireTime := time.Now().Add(24 * time.Hour)

	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireTime),
		},
	}

	//create the token using hs256 algo
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	//sign with the secret key and return
	return token.SignedString(getJWTKey())
}

// HELPER FUNCTION
func VerifyToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return getJWTKey(), nil
	})

	if err != nil || !token.Valid {
		return nil, err
	}

	return claims, nil
}
