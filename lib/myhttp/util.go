package myhttp

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

const visitorCookieName = "visitorUID"

// GuessHostnameWithScheme derives the public base url of this process without
// a request at hand, for callback urls registered at startup.
func GuessHostnameWithScheme() string {
	project := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if project != "" {
		return fmt.Sprintf("https://%s.appspot.com", project)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s", port)
}

func HostnameWithScheme(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// VisitorUID returns the uid that identifies this browser across requests.
func VisitorUID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(visitorCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func SetVisitorUID(w http.ResponseWriter, uid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    uid,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
