// internal/app/features/oauth/userinfo.go
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// fetchProfile retrieves the normalized identity for a provider's
// access token.
func fetchProfile(ctx context.Context, provider string, token *oauth2.Token) (profile, error) {
	switch provider {
	case ProviderGoogle:
		return fetchGoogleProfile(ctx, token)
	case ProviderGitHub:
		return fetchGitHubProfile(ctx, token)
	}
	return profile{}, fmt.Errorf("unknown provider %q", provider)
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func fetchGoogleProfile(ctx context.Context, token *oauth2.Token) (profile, error) {
	var info googleUserInfo
	if err := getJSON(ctx, token, "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
		return profile{}, err
	}
	return profile{Email: info.Email, Name: info.Name, Image: info.Picture}, nil
}

type githubUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func fetchGitHubProfile(ctx context.Context, token *oauth2.Token) (profile, error) {
	var u githubUser
	if err := getJSON(ctx, token, "https://api.github.com/user", &u); err != nil {
		return profile{}, err
	}

	email := u.Email
	if email == "" {
		// The profile email is often hidden; the emails endpoint
		// lists the verified addresses.
		var emails []githubEmail
		if err := getJSON(ctx, token, "https://api.github.com/user/emails", &emails); err != nil {
			return profile{}, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}
	return profile{Email: email, Name: name, Image: u.AvatarURL}, nil
}

func getJSON(ctx context.Context, token *oauth2.Token, url string, dst any) error {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status code %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
