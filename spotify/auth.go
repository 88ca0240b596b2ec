package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"moodlist/config"
	"moodlist/sentryhelper"
)

// Scopes requested at login: profile and email to resolve the user, playlist
// modification to create and fill playlists.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// TokenPair is handed back to the browser; the server keeps no copy.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Authenticator relays the authorization code flow between the browser and
// the Spotify accounts service.
type Authenticator struct {
	oauth       *oauth2.Config
	frontendURI string
	httpClient  *http.Client
}

func NewAuthenticator(cfg config.SpotifyConfig, frontendURI string) *Authenticator {
	return &Authenticator{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
				// credentials go in the form body, not a Basic header
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		frontendURI: frontendURI,
	}
}

// WithHTTPClient sets the client used for the token exchange.
func (a *Authenticator) WithHTTPClient(client *http.Client) *Authenticator {
	a.httpClient = client
	return a
}

// AuthURL is where /login sends the browser.
func (a *Authenticator) AuthURL() string {
	// the relay keeps no session to verify state against, so none is sent
	u := a.oauth.AuthCodeURL("")

	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	q := parsed.Query()
	q.Del("state")
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

// Exchange trades an authorization code for a token pair with a single
// form-encoded POST to the token endpoint.
func (a *Authenticator) Exchange(ctx context.Context, code string) (TokenPair, error) {
	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}

	span := sentryhelper.StartSpan(ctx, "spotify.exchange_code", "Exchange authorization code for tokens")

	if code == "" {
		err := fmt.Errorf("%w: authorization code", ErrMissingInput)
		log.Warn("Callback reached without an authorization code")
		span.Status = sentry.SpanStatusInvalidArgument
		sentryhelper.FinishSpan(span, err)
		return TokenPair{}, err
	}

	token, err := a.oauth.Exchange(span.Context(), code)
	if err != nil {
		upErr := upstream("token exchange", err)
		log.Errorf("Error getting tokens: %v", upErr)
		sentryhelper.CaptureException(ctx, upErr)
		sentryhelper.FinishSpan(span, upErr)
		return TokenPair{}, upErr
	}

	sentryhelper.FinishSpan(span, nil)
	log.Debug("Exchanged authorization code for tokens")
	return TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}

// FrontendRedirect returns the frontend URI carrying both tokens as query
// parameters, keeping any query the URI already has.
func (a *Authenticator) FrontendRedirect(pair TokenPair) (string, error) {
	u, err := url.Parse(a.frontendURI)
	if err != nil {
		return "", fmt.Errorf("invalid frontend URI: %w", err)
	}
	q := u.Query()
	q.Set("access_token", pair.AccessToken)
	q.Set("refresh_token", pair.RefreshToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
