package database

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildDSN merges command-line credentials into a PostgreSQL connection
// URL. A leading "jdbc:" prefix is tolerated and stripped so connection
// strings carried over from the previous system keep working.
// Credentials given as arguments override any userinfo embedded in the
// URL; an empty user leaves the URL's own userinfo in place.
func BuildDSN(rawURL, user, password string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("database url is empty")
	}

	u, err := url.Parse(strings.TrimPrefix(rawURL, "jdbc:"))
	if err != nil {
		return "", fmt.Errorf("parsing database url: %w", err)
	}

	switch u.Scheme {
	case "postgres", "postgresql":
	default:
		return "", fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}

	if user != "" {
		if password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}

	return u.String(), nil
}
