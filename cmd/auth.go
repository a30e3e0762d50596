package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/discq/internal/server"
	"github.com/desertthunder/discq/internal/services"
	"github.com/desertthunder/discq/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the OAuth 1.0a authorization flow for Discogs.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// exchanges the verifier for an access token pair saved back to config.toml.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if config == nil {
		var err error
		if _, statErr := os.Stat(configPath); statErr == nil {
			config, err = shared.LoadConfig(configPath)
			if err != nil {
				r.logger.Warnf("failed to load config, using defaults %v", err)
				config = shared.DefaultConfig()
			}
		} else {
			config = shared.DefaultConfig()
		}
	}

	if !config.Credentials.Discogs.HasConsumer() {
		return fmt.Errorf("%w: Discogs consumer_key and consumer_secret must be set in config.toml", shared.ErrInvalidArgument)
	}

	oauth := r.oauth
	if oauth == nil {
		svc, err := services.NewDiscogsService(config.Credentials.Discogs.Map())
		if err != nil {
			return fmt.Errorf("failed to create Discogs service: %w", err)
		}
		oauth = svc
	}

	token, secret, err := r.doOAuth(ctx, config, oauth)
	if err != nil {
		return err
	}

	if err := config.Credentials.Discogs.Update(token, secret); err != nil {
		return fmt.Errorf("failed to update Discogs configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: discq folders\n")

	return nil
}

// doOAuth runs the three-legged flow: request token, browser authorization
// against the loopback callback server, and the access token exchange.
func (r *Runner) doOAuth(ctx context.Context, config *shared.Config, oauth services.OAuthService) (string, string, error) {
	serverAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	callbackURL := fmt.Sprintf("http://%s/callback", serverAddr)

	requestToken, requestSecret, authURL, err := oauth.BeginAuth(callbackURL)
	if err != nil {
		return "", "", err
	}

	oauthHandler := server.NewOAuthHandler(requestToken)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Discogs authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.VerifierResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return "", "", fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return "", "", fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return "", "", fmt.Errorf("authorization failed: %w", result.Error())
	}

	return oauth.CompleteAuth(ctx, requestToken, requestSecret, result.Verifier)
}

// AuthStatus verifies the stored credentials with an identity probe.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.ensureAuthenticated(ctx); err != nil {
		return err
	}

	identity, err := r.service.Identity(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(identity, pretty)
	}

	r.writePlain("✓ Authenticated with %s\n", r.service.Name())
	r.writePlain("Username: %s\n", identity.Username)
	if identity.Name != "" {
		r.writePlain("Name: %s\n", identity.Name)
	}

	return nil
}
